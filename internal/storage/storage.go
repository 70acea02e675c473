package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Uploader stores an evidence file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

// CloudinaryUploader stores evidence files in a Cloudinary folder. Evidence
// URLs are immutable once attached to a case, so every upload gets a fresh
// public ID.
type CloudinaryUploader struct {
	client *cloudinary.Cloudinary
	folder string
	logger *slog.Logger
}

func NewCloudinaryUploader(cloudinaryURL, folder string, logger *slog.Logger) (*CloudinaryUploader, error) {
	client, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	return &CloudinaryUploader{
		client: client,
		folder: folder,
		logger: logger,
	}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	publicID := uuid.NewString()
	if ext := filepath.Ext(filename); ext != "" {
		base := strings.TrimSuffix(filepath.Base(filename), ext)
		if base != "" {
			publicID = base + "-" + publicID
		}
	}

	resp, err := u.client.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   u.folder,
		PublicID: publicID,
	})
	if err != nil {
		u.logger.Error("cloudinary upload failed", "error", err, "filename", filename)
		return "", fmt.Errorf("failed to upload evidence file: %w", err)
	}

	u.logger.Info("evidence file uploaded",
		"filename", filename,
		"public_id", resp.PublicID,
		"bytes", resp.Bytes)

	return resp.SecureURL, nil
}
