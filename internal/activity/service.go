package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/saps-platform/case-management/internal/core/events"
)

// eventTypeFor maps a persisted action type onto the bus event type used by
// feed and notification subscribers.
func eventTypeFor(actionType string) string {
	switch actionType {
	case "case_created":
		return events.EventTypeCaseCreated
	case "status_changed":
		return events.EventTypeStatusChanged
	case "note_added":
		return events.EventTypeNoteAdded
	case "case_assigned":
		return events.EventTypeCaseAssigned
	}
	return actionType
}

// Service persists activity entries and publishes them on the event bus.
// Case operations call Record after their own commit, so this path must not
// block or panic; publish is async and persistence errors bubble up for the
// caller to log.
type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// Record implements the recorder interface the case service depends on.
func (s *Service) Record(actionType string, caseID int64, caseNumber, description, userName, province string) error {
	event := &Event{
		ActionType:  actionType,
		CaseID:      caseID,
		CaseNumber:  caseNumber,
		Description: description,
		UserName:    userName,
		Province:    province,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(event); err != nil {
		return err
	}

	if s.bus != nil {
		busEvent := events.NewCaseActivityEvent(
			eventTypeFor(actionType), actionType, caseID, caseNumber, description, userName, province)
		if err := s.bus.Publish(context.Background(), busEvent); err != nil {
			s.logger.Error("failed to publish activity event",
				"error", err,
				"action_type", actionType,
				"case_id", caseID)
		}
	}

	s.logger.Info("activity recorded",
		"action_type", actionType,
		"case_id", caseID,
		"case_number", caseNumber)

	return nil
}

// RecentFeed returns the newest activity entries, newest first.
func (s *Service) RecentFeed(limit int) ([]*Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	feed, err := s.repo.GetRecent(limit)
	if err != nil {
		s.logger.Error("failed to load activity feed", "error", err)
		return nil, err
	}
	return feed, nil
}

// CaseTrail returns the activity entries for one case, newest first.
func (s *Service) CaseTrail(caseID int64, limit int) ([]*Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	trail, err := s.repo.GetByCaseID(caseID, limit)
	if err != nil {
		s.logger.Error("failed to load case activity trail", "error", err, "case_id", caseID)
		return nil, err
	}
	return trail, nil
}
