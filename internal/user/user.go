package user

import (
	"time"

	"github.com/saps-platform/case-management/internal"
	userDatamodel "github.com/saps-platform/case-management/internal/core/datamodel/user"
	"github.com/saps-platform/case-management/internal/rbac"
)

type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	PasswordHash      string    `json:"-"`
	SAPSRole          rbac.Role `json:"saps_role"`
	Province          string    `json:"province,omitempty"`
	Station           string    `json:"station,omitempty"`
	BadgeNumber       string    `json:"badge_number,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	ProfileComplete   bool      `json:"profile_complete"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ErrNotFound mirrors internal.ErrCaseNotFound so a missing user surfaces as
// a 404 to the client instead of an opaque server error.
var ErrNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                u.ID,
		Email:             u.Email,
		FullName:          u.FullName,
		PasswordHash:      u.PasswordHash,
		SAPSRole:          string(u.SAPSRole),
		Province:          u.Province,
		Station:           u.Station,
		BadgeNumber:       u.BadgeNumber,
		ProfilePictureURL: u.ProfilePictureURL,
		ProfileComplete:   u.ProfileComplete,
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:                u.ID,
		Email:             u.Email,
		FullName:          u.FullName,
		PasswordHash:      u.PasswordHash,
		SAPSRole:          rbac.Role(u.SAPSRole),
		Province:          u.Province,
		Station:           u.Station,
		BadgeNumber:       u.BadgeNumber,
		ProfilePictureURL: u.ProfilePictureURL,
		ProfileComplete:   u.ProfileComplete,
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
