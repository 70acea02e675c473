package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/saps-platform/case-management/internal/auth"
	userDatamodel "github.com/saps-platform/case-management/internal/core/datamodel/user"
	"github.com/saps-platform/case-management/internal/rbac"
)

// Repository implements auth.UserRepository using GORM over the users table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetPasswordForEmail(email string) (string, int64, error) {
	var row userDatamodel.User
	err := r.db.Select("id", "password_hash").
		Where("email = ? AND is_active = ?", email, true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, errors.New("user not found")
		}
		return "", 0, err
	}
	return row.PasswordHash, row.ID, nil
}

func (r *Repository) GetUserByID(userID int64) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	return &auth.User{
		ID:                row.ID,
		Email:             row.Email,
		FullName:          row.FullName,
		Role:              rbac.Role(row.SAPSRole),
		Province:          row.Province,
		Station:           row.Station,
		BadgeNumber:       row.BadgeNumber,
		ProfilePictureURL: row.ProfilePictureURL,
		ProfileComplete:   row.ProfileComplete,
		IsActive:          row.IsActive,
	}, nil
}
