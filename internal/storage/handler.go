package storage

import (
	"log/slog"
	"net/http"

	"github.com/saps-platform/case-management/internal"
	"github.com/saps-platform/case-management/internal/auth"
	"github.com/saps-platform/case-management/internal/rbac"
	"github.com/saps-platform/case-management/internal/transport"
	"github.com/saps-platform/case-management/pkg/logger"
)

// maxUploadSize caps evidence uploads at 25 MB per file.
const maxUploadSize = 25 << 20

type Handler struct {
	*transport.BaseHandler
	uploader Uploader
	policy   *rbac.Policy
}

func NewHandler(uploader Uploader, policy *rbac.Policy) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		uploader:    uploader,
		policy:      policy,
	}
}

// UploadEvidence accepts a multipart file and stores it, returning the
// public URL to attach to a case via the evidence endpoint.
func (h *Handler) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("UploadEvidence: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if !h.policy.Can(user.Role, rbac.CanUploadEvidence) {
		h.Logger.Warn("UploadEvidence: denied", "user_id", user.ID, "role", user.Role)
		h.HandleServiceError(w, internal.ErrPermissionDenied)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.Logger.Error("UploadEvidence: invalid multipart form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.Logger.Error("UploadEvidence: missing file field", "error", err)
		h.WriteError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	fileURL, err := h.uploader.Upload(r.Context(), file, header.Filename)
	if err != nil {
		h.Logger.Error("UploadEvidence: upload failed", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, internal.NewExternalError("failed to store evidence file", internal.ErrCodeStorageFailed, err))
		return
	}

	h.Logger.Info("UploadEvidence: file stored",
		"user_id", user.ID,
		"filename", header.Filename)

	h.WriteJSON(w, http.StatusCreated, map[string]string{
		"file_url": fileURL,
	})
}
