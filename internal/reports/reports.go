package reports

import (
	"encoding/json"
	"fmt"
	"time"

	reportDatamodel "github.com/saps-platform/case-management/internal/core/datamodel/report"
)

// AllProvinces is the sentinel scope for national statistics.
const AllProvinces = "All Provinces"

const (
	ReportStatusPending   = "pending"
	ReportStatusCompleted = "completed"
	ReportStatusFailed    = "failed"
)

// Stats is the aggregate picture of the case load used by the dashboard and
// fed into generated report narratives.
type Stats struct {
	Total              int64            `json:"total"`
	Solved             int64            `json:"solved"`
	UnderInvestigation int64            `json:"under_investigation"`
	Critical           int64            `json:"critical"`
	ClearanceRate      float64          `json:"clearance_rate"`
	ByType             map[string]int64 `json:"by_type"`
	ByProvince         map[string]int64 `json:"by_province"`
	ByStatus           map[string]int64 `json:"by_status"`
	ByPriority         map[string]int64 `json:"by_priority"`
}

// Report is a ministerial report request plus its generated narrative.
type Report struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Province         string     `json:"province"`
	PeriodStart      time.Time  `json:"period_start"`
	PeriodEnd        time.Time  `json:"period_end"`
	RequestedBy      string     `json:"requested_by"`
	ReportStatus     string     `json:"report_status"`
	Title            string     `json:"title,omitempty"`
	ExecutiveSummary string     `json:"executive_summary,omitempty"`
	KeyFindings      []string   `json:"key_findings,omitempty"`
	Recommendations  []string   `json:"recommendations,omitempty"`
	Conclusion       string     `json:"conclusion,omitempty"`
	FailureReason    string     `json:"failure_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// Repository defines the data access methods for reports and case statistics.
type Repository interface {
	Create(r *Report) error
	GetByID(id int64) (*Report, error)
	Update(r *Report) error
	ListRecent(limit int) ([]*Report, error)
	AggregateStats(province string, start, end time.Time) (*Stats, error)
}

func ToDataModel(r *Report) (*reportDatamodel.Report, error) {
	findings, err := json.Marshal(r.KeyFindings)
	if err != nil {
		return nil, fmt.Errorf("marshal key findings: %w", err)
	}
	recommendations, err := json.Marshal(r.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("marshal recommendations: %w", err)
	}

	return &reportDatamodel.Report{
		ID:               r.ID,
		Name:             r.Name,
		Province:         r.Province,
		PeriodStart:      r.PeriodStart,
		PeriodEnd:        r.PeriodEnd,
		RequestedBy:      r.RequestedBy,
		ReportStatus:     r.ReportStatus,
		Title:            r.Title,
		ExecutiveSummary: r.ExecutiveSummary,
		KeyFindings:      findings,
		Recommendations:  recommendations,
		Conclusion:       r.Conclusion,
		FailureReason:    r.FailureReason,
		CreatedAt:        r.CreatedAt,
		CompletedAt:      r.CompletedAt,
	}, nil
}

func FromDataModel(m *reportDatamodel.Report) (*Report, error) {
	r := &Report{
		ID:               m.ID,
		Name:             m.Name,
		Province:         m.Province,
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		RequestedBy:      m.RequestedBy,
		ReportStatus:     m.ReportStatus,
		Title:            m.Title,
		ExecutiveSummary: m.ExecutiveSummary,
		Conclusion:       m.Conclusion,
		FailureReason:    m.FailureReason,
		CreatedAt:        m.CreatedAt,
		CompletedAt:      m.CompletedAt,
	}

	if len(m.KeyFindings) > 0 {
		if err := json.Unmarshal(m.KeyFindings, &r.KeyFindings); err != nil {
			return nil, fmt.Errorf("unmarshal key findings: %w", err)
		}
	}
	if len(m.Recommendations) > 0 {
		if err := json.Unmarshal(m.Recommendations, &r.Recommendations); err != nil {
			return nil, fmt.Errorf("unmarshal recommendations: %w", err)
		}
	}

	return r, nil
}

func FromDataModelSlice(models []*reportDatamodel.Report) ([]*Report, error) {
	result := make([]*Report, len(models))
	for i, m := range models {
		r, err := FromDataModel(m)
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}
