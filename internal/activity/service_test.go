package activity_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saps-platform/case-management/internal/activity"
	"github.com/saps-platform/case-management/internal/core/events"
)

func TestActivityService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ActivityService Suite")
}

type mockActivityRepository struct {
	events      []*activity.Event
	createError error
	getError    error
	nextID      int64
}

func newMockActivityRepository() *mockActivityRepository {
	return &mockActivityRepository{nextID: 1}
}

func (m *mockActivityRepository) Create(event *activity.Event) error {
	if m.createError != nil {
		return m.createError
	}
	event.ID = m.nextID
	m.nextID++
	m.events = append(m.events, event)
	return nil
}

func (m *mockActivityRepository) GetRecent(limit int) ([]*activity.Event, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	// newest first
	result := make([]*activity.Event, 0, limit)
	for i := len(m.events) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.events[i])
	}
	return result, nil
}

func (m *mockActivityRepository) GetByCaseID(caseID int64, limit int) ([]*activity.Event, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	result := make([]*activity.Event, 0, limit)
	for i := len(m.events) - 1; i >= 0 && len(result) < limit; i-- {
		if m.events[i].CaseID == caseID {
			result = append(result, m.events[i])
		}
	}
	return result, nil
}

var _ = Describe("ActivityService", func() {
	var (
		repo    *mockActivityRepository
		bus     *events.EventBus
		service *activity.Service
		logger  *slog.Logger
	)

	BeforeEach(func() {
		repo = newMockActivityRepository()
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		service = activity.NewService(repo, bus, logger)
	})

	Describe("Record", func() {
		It("should persist the entry with all fields", func() {
			err := service.Record("case_created", 7, "SAPS-2026-123456",
				"New Fraud case reported in Gauteng", "Peter Dlamini", "Gauteng")
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.events).To(HaveLen(1))
			entry := repo.events[0]
			Expect(entry.ID).To(BeNumerically(">", 0))
			Expect(entry.ActionType).To(Equal("case_created"))
			Expect(entry.CaseID).To(Equal(int64(7)))
			Expect(entry.CaseNumber).To(Equal("SAPS-2026-123456"))
			Expect(entry.Description).To(Equal("New Fraud case reported in Gauteng"))
			Expect(entry.UserName).To(Equal("Peter Dlamini"))
			Expect(entry.Province).To(Equal("Gauteng"))
			Expect(entry.CreatedAt).To(BeTemporally("~", time.Now(), time.Second))
		})

		It("should publish a typed event on the bus", func() {
			received := make(chan events.Event, 1)
			bus.Subscribe(events.EventTypeStatusChanged, func(ctx context.Context, e events.Event) error {
				received <- e
				return nil
			})

			err := service.Record("status_changed", 7, "SAPS-2026-123456",
				"Case SAPS-2026-123456 status changed to Solved", "Johan Botha", "Gauteng")
			Expect(err).NotTo(HaveOccurred())

			Eventually(received).Should(Receive())
		})

		It("should propagate persistence failures to the caller", func() {
			repo.createError = errors.New("activity store down")

			err := service.Record("note_added", 7, "SAPS-2026-123456",
				"Note added to case SAPS-2026-123456", "Nomsa Khumalo", "Gauteng")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RecentFeed", func() {
		BeforeEach(func() {
			for i := 0; i < 5; i++ {
				Expect(service.Record("case_created", int64(i+1), "SAPS-2026-100000",
					"New Murder case reported in Limpopo", "Peter Dlamini", "Limpopo")).To(Succeed())
			}
		})

		It("should return entries newest first", func() {
			feed, err := service.RecentFeed(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(feed).To(HaveLen(3))
			Expect(feed[0].CaseID).To(Equal(int64(5)))
			Expect(feed[2].CaseID).To(Equal(int64(3)))
		})

		It("should clamp a nonsensical limit to the default", func() {
			feed, err := service.RecentFeed(-1)
			Expect(err).NotTo(HaveOccurred())
			Expect(feed).To(HaveLen(5))
		})
	})

	Describe("CaseTrail", func() {
		It("should return only entries for the requested case", func() {
			Expect(service.Record("case_created", 1, "SAPS-2026-100001", "New Fraud case reported in Gauteng", "Peter Dlamini", "Gauteng")).To(Succeed())
			Expect(service.Record("note_added", 2, "SAPS-2026-100002", "Note added to case SAPS-2026-100002", "Nomsa Khumalo", "Gauteng")).To(Succeed())
			Expect(service.Record("status_changed", 1, "SAPS-2026-100001", "Case SAPS-2026-100001 status changed to Solved", "Johan Botha", "Gauteng")).To(Succeed())

			trail, err := service.CaseTrail(1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(trail).To(HaveLen(2))
			Expect(trail[0].ActionType).To(Equal("status_changed"))
			Expect(trail[1].ActionType).To(Equal("case_created"))
		})
	})
})
