package activity

import (
	"time"

	activityDatamodel "github.com/saps-platform/case-management/internal/core/datamodel/activity"
)

// Event is one immutable entry of the station activity feed. Entries are
// written once as a side effect of case operations and never updated.
type Event struct {
	ID          int64     `json:"id"`
	ActionType  string    `json:"action_type"`
	CaseID      int64     `json:"case_id"`
	CaseNumber  string    `json:"case_number"`
	Description string    `json:"description"`
	UserName    string    `json:"user_name"`
	Province    string    `json:"province"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository defines the data access methods for activity events.
type Repository interface {
	Create(event *Event) error
	GetRecent(limit int) ([]*Event, error)
	GetByCaseID(caseID int64, limit int) ([]*Event, error)
}

func ToDataModel(e *Event) *activityDatamodel.ActivityEvent {
	return &activityDatamodel.ActivityEvent{
		ID:          e.ID,
		ActionType:  e.ActionType,
		CaseID:      e.CaseID,
		CaseNumber:  e.CaseNumber,
		Description: e.Description,
		UserName:    e.UserName,
		Province:    e.Province,
		CreatedAt:   e.CreatedAt,
	}
}

func FromDataModel(m *activityDatamodel.ActivityEvent) *Event {
	return &Event{
		ID:          m.ID,
		ActionType:  m.ActionType,
		CaseID:      m.CaseID,
		CaseNumber:  m.CaseNumber,
		Description: m.Description,
		UserName:    m.UserName,
		Province:    m.Province,
		CreatedAt:   m.CreatedAt,
	}
}

func FromDataModelSlice(models []*activityDatamodel.ActivityEvent) []*Event {
	result := make([]*Event, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
