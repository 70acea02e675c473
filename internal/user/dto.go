package user

import (
	"strings"

	"github.com/saps-platform/case-management/internal"
	"github.com/saps-platform/case-management/internal/rbac"
)

// ProfileSetupDTO carries the one-time profile setup submitted after first
// login. Role and province are bound here and the role is locked afterwards.
type ProfileSetupDTO struct {
	FullName          string `json:"full_name"`
	SAPSRole          string `json:"saps_role"`
	Province          string `json:"province"`
	Station           string `json:"station,omitempty"`
	BadgeNumber       string `json:"badge_number,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

func (dto ProfileSetupDTO) Validate() error {
	var missing []string
	if strings.TrimSpace(dto.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if strings.TrimSpace(dto.SAPSRole) == "" {
		missing = append(missing, "saps_role")
	}
	if strings.TrimSpace(dto.Province) == "" {
		missing = append(missing, "province")
	}
	if len(missing) > 0 {
		return internal.NewMissingFieldsError(missing)
	}

	if _, ok := rbac.ParseRole(dto.SAPSRole); !ok {
		return internal.NewValidationError("unknown SAPS role", internal.ErrCodeValidationFailed)
	}
	return nil
}
