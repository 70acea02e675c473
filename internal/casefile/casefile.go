package casefile

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	casefileDatamodel "github.com/saps-platform/case-management/internal/core/datamodel/casefile"
	"github.com/saps-platform/case-management/internal/rbac"
)

// Case is the investigative case aggregate. Status history, notes and
// evidence URLs live inside the aggregate and are only ever appended to.
type Case struct {
	ID                  int64         `json:"id"`
	CaseNumber          string        `json:"case_number"`
	CrimeType           string        `json:"crime_type"`
	Province            string        `json:"province"`
	District            string        `json:"district,omitempty"`
	LocationAddress     string        `json:"location_address,omitempty"`
	IncidentDate        time.Time     `json:"incident_date"`
	ReportedDate        time.Time     `json:"reported_date"`
	Priority            string        `json:"priority"`
	Description         string        `json:"description"`
	VictimInfo          string        `json:"victim_info,omitempty"`
	SuspectInfo         string        `json:"suspect_info,omitempty"`
	Status              rbac.Status   `json:"status"`
	EvidenceFiles       []string      `json:"evidence_files"`
	StatusHistory       []StatusEntry `json:"status_history"`
	CaseNotes           []CaseNote    `json:"case_notes"`
	AssignedOfficer     string        `json:"assigned_officer,omitempty"`
	AssignedOfficerName string        `json:"assigned_officer_name,omitempty"`
	CourtDate           *time.Time    `json:"court_date,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// StatusEntry is one step of the case timeline. Entries are never rewritten;
// a repeated target status still appends a fresh entry.
type StatusEntry struct {
	Status    rbac.Status `json:"status"`
	Date      time.Time   `json:"date"`
	ChangedBy string      `json:"changed_by"`
}

// CaseNote is a free-text annotation on the case.
type CaseNote struct {
	Date   time.Time `json:"date"`
	Author string    `json:"author"`
	Note   string    `json:"note"`
}

const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Priorities in escalation order.
func Priorities() []string {
	return []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

func ValidPriority(p string) bool {
	for _, known := range Priorities() {
		if p == known {
			return true
		}
	}
	return false
}

// Provinces lists the nine South African provinces.
func Provinces() []string {
	return []string{
		"Gauteng", "Western Cape", "KwaZulu-Natal", "Eastern Cape", "Free State",
		"Limpopo", "Mpumalanga", "North West", "Northern Cape",
	}
}

func ValidProvince(p string) bool {
	for _, known := range Provinces() {
		if p == known {
			return true
		}
	}
	return false
}

// CrimeTypes is the SAPS crime classification offered on the intake form.
func CrimeTypes() []string {
	return []string{
		"Murder", "Sexual Offences", "Attempted Murder", "Assault GBH", "Common Assault",
		"Common Robbery", "Robbery with Aggravating Circumstances", "Burglary Residential",
		"Burglary Non-Residential", "Theft of Motor Vehicle", "Theft from Motor Vehicle",
		"Stock Theft", "Illegal Possession of Firearms", "Drug-Related Crime",
		"Driving Under Influence", "Fraud", "Malicious Damage to Property", "Carjacking",
		"Truck Hijacking", "Cash-in-Transit Robbery", "Bank Robbery", "Other",
	}
}

// NewCaseNumber produces a reference like SAPS-2026-482913. The random block
// is six digits, so collisions are possible; the unique index on case_number
// backstops them and the service regenerates on conflict.
func NewCaseNumber() string {
	return fmt.Sprintf("SAPS-%d-%d", time.Now().Year(), 100000+rand.Intn(900000))
}

func (c *Case) appendStatus(target rbac.Status, changedBy string, at time.Time) {
	c.Status = target
	c.StatusHistory = append(c.StatusHistory, StatusEntry{
		Status:    target,
		Date:      at,
		ChangedBy: changedBy,
	})
}

func (c *Case) appendNote(author, note string, at time.Time) {
	c.CaseNotes = append(c.CaseNotes, CaseNote{
		Date:   at,
		Author: author,
		Note:   note,
	})
}

func ToDataModel(c *Case) (*casefileDatamodel.Case, error) {
	evidence, err := json.Marshal(c.EvidenceFiles)
	if err != nil {
		return nil, fmt.Errorf("marshal evidence files: %w", err)
	}
	history, err := json.Marshal(c.StatusHistory)
	if err != nil {
		return nil, fmt.Errorf("marshal status history: %w", err)
	}
	notes, err := json.Marshal(c.CaseNotes)
	if err != nil {
		return nil, fmt.Errorf("marshal case notes: %w", err)
	}

	return &casefileDatamodel.Case{
		ID:                  c.ID,
		CaseNumber:          c.CaseNumber,
		CrimeType:           c.CrimeType,
		Province:            c.Province,
		District:            c.District,
		LocationAddress:     c.LocationAddress,
		IncidentDate:        c.IncidentDate,
		ReportedDate:        c.ReportedDate,
		Priority:            c.Priority,
		Description:         c.Description,
		VictimInfo:          c.VictimInfo,
		SuspectInfo:         c.SuspectInfo,
		Status:              string(c.Status),
		EvidenceFiles:       evidence,
		StatusHistory:       history,
		CaseNotes:           notes,
		AssignedOfficer:     c.AssignedOfficer,
		AssignedOfficerName: c.AssignedOfficerName,
		CourtDate:           c.CourtDate,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}, nil
}

func FromDataModel(m *casefileDatamodel.Case) (*Case, error) {
	c := &Case{
		ID:                  m.ID,
		CaseNumber:          m.CaseNumber,
		CrimeType:           m.CrimeType,
		Province:            m.Province,
		District:            m.District,
		LocationAddress:     m.LocationAddress,
		IncidentDate:        m.IncidentDate,
		ReportedDate:        m.ReportedDate,
		Priority:            m.Priority,
		Description:         m.Description,
		VictimInfo:          m.VictimInfo,
		SuspectInfo:         m.SuspectInfo,
		Status:              rbac.Status(m.Status),
		EvidenceFiles:       []string{},
		StatusHistory:       []StatusEntry{},
		CaseNotes:           []CaseNote{},
		AssignedOfficer:     m.AssignedOfficer,
		AssignedOfficerName: m.AssignedOfficerName,
		CourtDate:           m.CourtDate,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}

	if len(m.EvidenceFiles) > 0 {
		if err := json.Unmarshal(m.EvidenceFiles, &c.EvidenceFiles); err != nil {
			return nil, fmt.Errorf("unmarshal evidence files: %w", err)
		}
	}
	if len(m.StatusHistory) > 0 {
		if err := json.Unmarshal(m.StatusHistory, &c.StatusHistory); err != nil {
			return nil, fmt.Errorf("unmarshal status history: %w", err)
		}
	}
	if len(m.CaseNotes) > 0 {
		if err := json.Unmarshal(m.CaseNotes, &c.CaseNotes); err != nil {
			return nil, fmt.Errorf("unmarshal case notes: %w", err)
		}
	}

	return c, nil
}

func FromDataModelSlice(models []*casefileDatamodel.Case) ([]*Case, error) {
	result := make([]*Case, len(models))
	for i, m := range models {
		c, err := FromDataModel(m)
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}
