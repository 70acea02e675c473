package casefile

import (
	"encoding/json"
	"time"
)

type Case struct {
	ID                  int64           `gorm:"primaryKey"`
	CaseNumber          string          `gorm:"column:case_number;not null;uniqueIndex"`
	CrimeType           string          `gorm:"column:crime_type;not null"`
	Province            string          `gorm:"column:province;not null"`
	District            string          `gorm:"column:district"`
	LocationAddress     string          `gorm:"column:location_address"`
	IncidentDate        time.Time       `gorm:"column:incident_date;not null"`
	ReportedDate        time.Time       `gorm:"column:reported_date;not null"`
	Priority            string          `gorm:"column:priority;default:Medium"`
	Description         string          `gorm:"column:description;not null"`
	VictimInfo          string          `gorm:"column:victim_info"`
	SuspectInfo         string          `gorm:"column:suspect_info"`
	Status              string          `gorm:"column:status;default:Reported"`
	EvidenceFiles       json.RawMessage `gorm:"column:evidence_files;type:jsonb"`
	StatusHistory       json.RawMessage `gorm:"column:status_history;type:jsonb"`
	CaseNotes           json.RawMessage `gorm:"column:case_notes;type:jsonb"`
	AssignedOfficer     string          `gorm:"column:assigned_officer"`
	AssignedOfficerName string          `gorm:"column:assigned_officer_name"`
	CourtDate           *time.Time      `gorm:"column:court_date"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Case) TableName() string {
	return "cases"
}
