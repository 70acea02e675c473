package reports

import (
	"strings"
	"time"

	"github.com/saps-platform/case-management/internal"
)

// GenerateReportDTO requests a new ministerial report.
type GenerateReportDTO struct {
	Name        string    `json:"name"`
	Province    string    `json:"province,omitempty"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

func (dto GenerateReportDTO) Validate() error {
	var missing []string
	if strings.TrimSpace(dto.Name) == "" {
		missing = append(missing, "name")
	}
	if dto.PeriodStart.IsZero() {
		missing = append(missing, "period_start")
	}
	if dto.PeriodEnd.IsZero() {
		missing = append(missing, "period_end")
	}
	if len(missing) > 0 {
		return internal.NewMissingFieldsError(missing)
	}

	if dto.PeriodEnd.Before(dto.PeriodStart) {
		return internal.NewValidationError("period_end must not precede period_start", internal.ErrCodeValidationFailed)
	}
	return nil
}

// StatsFilter narrows the aggregate statistics query.
type StatsFilter struct {
	Province    string
	PeriodStart time.Time
	PeriodEnd   time.Time
}
