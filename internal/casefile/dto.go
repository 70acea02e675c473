package casefile

import (
	"strings"
	"time"

	"github.com/saps-platform/case-management/internal"
	"github.com/saps-platform/case-management/internal/core/common/validation"
	"github.com/saps-platform/case-management/internal/rbac"
)

// CreateCaseDTO is the intake form payload.
type CreateCaseDTO struct {
	CrimeType       string    `json:"crime_type"`
	Province        string    `json:"province"`
	District        string    `json:"district,omitempty"`
	LocationAddress string    `json:"location_address,omitempty"`
	IncidentDate    time.Time `json:"incident_date"`
	Priority        string    `json:"priority,omitempty"`
	Description     string    `json:"description"`
	VictimInfo      string    `json:"victim_info,omitempty"`
	SuspectInfo     string    `json:"suspect_info,omitempty"`
}

// Validate collects every missing required field into a single error so the
// form can surface them all at once.
func (dto CreateCaseDTO) Validate() error {
	var missing []string
	if strings.TrimSpace(dto.CrimeType) == "" {
		missing = append(missing, "crime_type")
	}
	if strings.TrimSpace(dto.Province) == "" {
		missing = append(missing, "province")
	}
	if strings.TrimSpace(dto.Description) == "" {
		missing = append(missing, "description")
	}
	if dto.IncidentDate.IsZero() {
		missing = append(missing, "incident_date")
	}
	if len(missing) > 0 {
		return internal.NewMissingFieldsError(missing)
	}

	if !ValidProvince(dto.Province) {
		return internal.NewValidationError("unknown province", internal.ErrCodeInvalidProvince)
	}
	if dto.Priority != "" && !ValidPriority(dto.Priority) {
		return internal.NewValidationError("priority must be one of Low, Medium, High, Critical", internal.ErrCodeInvalidPriority)
	}
	if err := validation.ValidateCaseDescription(dto.Description); err != nil {
		return err
	}
	if err := validation.ValidateIncidentDate(dto.IncidentDate); err != nil {
		return err
	}
	return nil
}

// ChangeStatusDTO moves a case to a new pipeline stage.
type ChangeStatusDTO struct {
	Status rbac.Status `json:"status"`
}

func (dto ChangeStatusDTO) Validate() error {
	if dto.Status == "" {
		return internal.NewMissingFieldsError([]string{"status"})
	}
	if !rbac.ValidStatus(dto.Status) {
		return internal.NewValidationError("unknown case status", internal.ErrCodeInvalidStatus)
	}
	return nil
}

// AddNoteDTO appends a note to the case.
type AddNoteDTO struct {
	Note string `json:"note"`
}

func (dto AddNoteDTO) Validate() error {
	if strings.TrimSpace(dto.Note) == "" {
		return internal.ErrEmptyNote
	}
	return nil
}

// AssignOfficerDTO hands a case to a field officer.
type AssignOfficerDTO struct {
	OfficerID int64 `json:"officer_id"`
}

func (dto AssignOfficerDTO) Validate() error {
	if dto.OfficerID <= 0 {
		return internal.NewMissingFieldsError([]string{"officer_id"})
	}
	return nil
}

// AttachEvidenceDTO records uploaded evidence file URLs on the case.
type AttachEvidenceDTO struct {
	FileURLs []string `json:"file_urls"`
}

func (dto AttachEvidenceDTO) Validate() error {
	if len(dto.FileURLs) == 0 {
		return internal.NewMissingFieldsError([]string{"file_urls"})
	}
	for _, u := range dto.FileURLs {
		if strings.TrimSpace(u) == "" {
			return internal.NewValidationError("file URLs cannot be blank", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

// ListFilter narrows ListCases results. Zero values mean "no filter".
type ListFilter struct {
	Status    rbac.Status
	Province  string
	Priority  string
	CrimeType string
	Search    string
	Limit     int
	Offset    int
}
