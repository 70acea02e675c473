package report

import (
	"encoding/json"
	"time"
)

type Report struct {
	ID               int64           `gorm:"primaryKey"`
	Name             string          `gorm:"column:name;not null"`
	Province         string          `gorm:"column:province;not null"`
	PeriodStart      time.Time       `gorm:"column:period_start;not null"`
	PeriodEnd        time.Time       `gorm:"column:period_end;not null"`
	RequestedBy      string          `gorm:"column:requested_by;not null"`
	ReportStatus     string          `gorm:"column:report_status;default:pending"`
	Title            string          `gorm:"column:title"`
	ExecutiveSummary string          `gorm:"column:executive_summary"`
	KeyFindings      json.RawMessage `gorm:"column:key_findings;type:jsonb"`
	Recommendations  json.RawMessage `gorm:"column:recommendations;type:jsonb"`
	Conclusion       string          `gorm:"column:conclusion"`
	FailureReason    string          `gorm:"column:failure_reason"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	CompletedAt      *time.Time      `gorm:"column:completed_at"`
}

func (Report) TableName() string {
	return "reports"
}
