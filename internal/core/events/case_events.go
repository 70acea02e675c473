package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCaseCreated   = "case.created"
	EventTypeStatusChanged = "case.status_changed"
	EventTypeNoteAdded     = "case.note_added"
	EventTypeCaseAssigned  = "case.assigned"
	EventTypeReportReady   = "report.ready"
)

// CaseActivityEvent is published on the bus for every case-affecting
// operation; subscribers feed the activity log and notification polling.
type CaseActivityEvent struct {
	BaseEvent
	ActionType  string `json:"action_type"`
	CaseID      int64  `json:"case_id"`
	CaseNumber  string `json:"case_number"`
	Description string `json:"description"`
	UserName    string `json:"user_name"`
	Province    string `json:"province"`
}

func NewCaseActivityEvent(eventType, actionType string, caseID int64, caseNumber, description, userName, province string) *CaseActivityEvent {
	return &CaseActivityEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"action_type": actionType,
				"case_id":     caseID,
				"case_number": caseNumber,
				"description": description,
				"user_name":   userName,
				"province":    province,
			},
		},
		ActionType:  actionType,
		CaseID:      caseID,
		CaseNumber:  caseNumber,
		Description: description,
		UserName:    userName,
		Province:    province,
	}
}

// ReportReadyEvent signals that the external text-generation service finished
// a ministerial report narrative.
type ReportReadyEvent struct {
	BaseEvent
	ReportID  int64  `json:"report_id"`
	Province  string `json:"province"`
	Requested string `json:"requested_by"`
}

func NewReportReadyEvent(reportID int64, province, requestedBy string) *ReportReadyEvent {
	return &ReportReadyEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeReportReady,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"report_id":    reportID,
				"province":     province,
				"requested_by": requestedBy,
			},
		},
		ReportID:  reportID,
		Province:  province,
		Requested: requestedBy,
	}
}
