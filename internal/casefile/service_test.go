package casefile_test

import (
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/saps-platform/case-management/internal"
	"github.com/saps-platform/case-management/internal/casefile"
	"github.com/saps-platform/case-management/internal/rbac"
)

func TestCaseService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CaseService Suite")
}

// Mock repository for testing
type mockCaseRepository struct {
	cases         map[int64]*casefile.Case
	nextID        int64
	createErrors  []error
	createCalls   int
	getError      error
	updateError   error
	deleteError   error
	lastFilter    casefile.ListFilter
	listResult    []*casefile.Case
	deletedIDs    []int64
	updatedCases  []*casefile.Case
	createdNumber []string
}

func newMockCaseRepository() *mockCaseRepository {
	return &mockCaseRepository{
		cases:  make(map[int64]*casefile.Case),
		nextID: 1,
	}
}

func (m *mockCaseRepository) Create(c *casefile.Case) error {
	m.createCalls++
	m.createdNumber = append(m.createdNumber, c.CaseNumber)
	if len(m.createErrors) > 0 {
		err := m.createErrors[0]
		m.createErrors = m.createErrors[1:]
		if err != nil {
			return err
		}
	}
	c.ID = m.nextID
	m.nextID++
	copied := *c
	m.cases[c.ID] = &copied
	return nil
}

func (m *mockCaseRepository) GetByID(id int64) (*casefile.Case, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	c, exists := m.cases[id]
	if !exists {
		return nil, internal.ErrCaseNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCaseRepository) List(filter casefile.ListFilter) ([]*casefile.Case, error) {
	m.lastFilter = filter
	if m.listResult != nil {
		return m.listResult, nil
	}
	return []*casefile.Case{}, nil
}

func (m *mockCaseRepository) Update(c *casefile.Case) error {
	if m.updateError != nil {
		return m.updateError
	}
	copied := *c
	m.cases[c.ID] = &copied
	m.updatedCases = append(m.updatedCases, &copied)
	return nil
}

func (m *mockCaseRepository) Delete(id int64) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.cases, id)
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

type recordedActivity struct {
	ActionType  string
	CaseID      int64
	CaseNumber  string
	Description string
	UserName    string
	Province    string
}

type mockActivityRecorder struct {
	records     []recordedActivity
	recordError error
}

func (m *mockActivityRecorder) Record(actionType string, caseID int64, caseNumber, description, userName, province string) error {
	if m.recordError != nil {
		return m.recordError
	}
	m.records = append(m.records, recordedActivity{
		ActionType:  actionType,
		CaseID:      caseID,
		CaseNumber:  caseNumber,
		Description: description,
		UserName:    userName,
		Province:    province,
	})
	return nil
}

type mockOfficerDirectory struct {
	officers map[int64]*casefile.Officer
}

func (m *mockOfficerDirectory) GetOfficer(id int64) (*casefile.Officer, error) {
	officer, exists := m.officers[id]
	if !exists {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}
	return officer, nil
}

var _ = Describe("CaseService", func() {
	var (
		repo     *mockCaseRepository
		activity *mockActivityRecorder
		officers *mockOfficerDirectory
		service  *casefile.Service

		constable casefile.Actor
		detective casefile.Actor
		commander casefile.Actor
		provMin   casefile.Actor
		natMin    casefile.Actor
	)

	validDTO := func() casefile.CreateCaseDTO {
		return casefile.CreateCaseDTO{
			CrimeType:    "Theft of Motor Vehicle",
			Province:     "Gauteng",
			District:     "Johannesburg Central",
			IncidentDate: time.Now().Add(-24 * time.Hour),
			Description:  "Vehicle stolen from shopping centre parking",
		}
	}

	seedCase := func(actor casefile.Actor) *casefile.Case {
		c, err := service.CreateCase(actor, validDTO())
		Expect(err).NotTo(HaveOccurred())
		activity.records = nil
		return c
	}

	BeforeEach(func() {
		repo = newMockCaseRepository()
		activity = &mockActivityRecorder{}
		officers = &mockOfficerDirectory{officers: map[int64]*casefile.Officer{}}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = casefile.NewService(repo, rbac.NewPolicy(nil), activity, officers, logger)

		constable = casefile.Actor{ID: 1, Email: "pdlamini@saps.gov.za", FullName: "Peter Dlamini", Role: rbac.RoleConstable, Province: "Gauteng"}
		detective = casefile.Actor{ID: 2, Email: "nkhumalo@saps.gov.za", FullName: "Nomsa Khumalo", Role: rbac.RoleDetective, Province: "Gauteng"}
		commander = casefile.Actor{ID: 3, Email: "jbotha@saps.gov.za", FullName: "Johan Botha", Role: rbac.RoleStationCommander, Province: "Gauteng"}
		provMin = casefile.Actor{ID: 4, Email: "tnkosi@gov.za", FullName: "Thandi Nkosi", Role: rbac.RoleProvincialMinister, Province: "Western Cape"}
		natMin = casefile.Actor{ID: 5, Email: "smahlangu@gov.za", FullName: "Sipho Mahlangu", Role: rbac.RoleNationalMinister, Province: ""}
	})

	Describe("CreateCase", func() {
		It("should open a case in Reported status with a seeded history entry", func() {
			c, err := service.CreateCase(constable, validDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(c.Status).To(Equal(rbac.StatusReported))
			Expect(c.StatusHistory).To(HaveLen(1))
			Expect(c.StatusHistory[0].Status).To(Equal(rbac.StatusReported))
			Expect(c.StatusHistory[0].ChangedBy).To(Equal("Peter Dlamini"))
			Expect(c.Priority).To(Equal(casefile.PriorityMedium))
			Expect(c.AssignedOfficer).To(Equal("pdlamini@saps.gov.za"))
			Expect(c.AssignedOfficerName).To(Equal("Peter Dlamini"))
		})

		It("should generate a case number in the SAPS-year-sequence format", func() {
			c, err := service.CreateCase(detective, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(c.CaseNumber).To(MatchRegexp(`^SAPS-\d{4}-\d{6}$`))
		})

		It("should record a case_created activity with the intake description", func() {
			c, err := service.CreateCase(constable, validDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(activity.records).To(HaveLen(1))
			record := activity.records[0]
			Expect(record.ActionType).To(Equal(casefile.ActionCaseCreated))
			Expect(record.CaseID).To(Equal(c.ID))
			Expect(record.Description).To(Equal("New Theft of Motor Vehicle case reported in Gauteng"))
			Expect(record.UserName).To(Equal("Peter Dlamini"))
			Expect(record.Province).To(Equal("Gauteng"))
		})

		It("should deny minister roles without persisting anything", func() {
			for _, actor := range []casefile.Actor{provMin, natMin} {
				_, err := service.CreateCase(actor, validDTO())
				Expect(err).To(Equal(internal.ErrPermissionDenied))
			}
			Expect(repo.createCalls).To(BeZero())
			Expect(activity.records).To(BeEmpty())
		})

		It("should list every missing required field in one validation error", func() {
			_, err := service.CreateCase(constable, casefile.CreateCaseDTO{})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingFields))

			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			fields := make([]string, len(details.Errors))
			for i, fieldErr := range details.Errors {
				fields[i] = fieldErr.Field
			}
			Expect(fields).To(ConsistOf("crime_type", "province", "description", "incident_date"))
			Expect(repo.createCalls).To(BeZero())
		})

		It("should reject an unknown province", func() {
			dto := validDTO()
			dto.Province = "Atlantis"
			_, err := service.CreateCase(constable, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidProvince))
		})

		It("should regenerate the case number when the unique index rejects it", func() {
			conflict := internal.NewConflictError("case number already exists", internal.ErrCodeCaseNumberConflict)
			repo.createErrors = []error{conflict, conflict, nil}

			c, err := service.CreateCase(constable, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ID).To(BeNumerically(">", 0))
			Expect(repo.createCalls).To(Equal(3))
			Expect(repo.createdNumber).To(HaveLen(3))
		})

		It("should give up after bounded regeneration attempts", func() {
			conflict := internal.NewConflictError("case number already exists", internal.ErrCodeCaseNumberConflict)
			repo.createErrors = []error{conflict, conflict, conflict, conflict, conflict, conflict}

			_, err := service.CreateCase(constable, validDTO())
			Expect(err).To(HaveOccurred())
			Expect(repo.createCalls).To(Equal(5))
		})

		It("should reject an incident date in the future", func() {
			dto := validDTO()
			dto.IncidentDate = time.Now().Add(48 * time.Hour)
			_, err := service.CreateCase(constable, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.GetDetailedMessage()).To(ContainSubstring("incident_date cannot be in the future"))
		})

		It("should keep the caller-supplied priority", func() {
			dto := validDTO()
			dto.Priority = casefile.PriorityCritical
			c, err := service.CreateCase(commander, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Priority).To(Equal(casefile.PriorityCritical))
		})
	})

	Describe("ChangeStatus", func() {
		It("should let a Detective move a case into Evidence Collection", func() {
			c := seedCase(detective)

			updated, err := service.ChangeStatus(detective, c.ID, casefile.ChangeStatusDTO{Status: rbac.StatusEvidenceCollection})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(rbac.StatusEvidenceCollection))
			Expect(updated.StatusHistory).To(HaveLen(2))
			Expect(updated.StatusHistory[1].Status).To(Equal(rbac.StatusEvidenceCollection))
			Expect(updated.StatusHistory[1].ChangedBy).To(Equal("Nomsa Khumalo"))
		})

		It("should deny a Constable the same Evidence Collection transition", func() {
			c := seedCase(constable)

			_, err := service.ChangeStatus(constable, c.ID, casefile.ChangeStatusDTO{Status: rbac.StatusEvidenceCollection})
			Expect(err).To(Equal(internal.ErrStatusNotPermitted))

			stored, getErr := repo.GetByID(c.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(rbac.StatusReported))
			Expect(stored.StatusHistory).To(HaveLen(1))
			Expect(activity.records).To(BeEmpty())
		})

		It("should deny minister roles every transition", func() {
			c := seedCase(commander)
			_, err := service.ChangeStatus(provMin, c.ID, casefile.ChangeStatusDTO{Status: rbac.StatusSolved})
			Expect(err).To(Equal(internal.ErrStatusNotPermitted))
		})

		It("should append a history entry even when the target equals the current status", func() {
			c := seedCase(constable)

			updated, err := service.ChangeStatus(constable, c.ID, casefile.ChangeStatusDTO{Status: rbac.StatusReported})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(rbac.StatusReported))
			Expect(updated.StatusHistory).To(HaveLen(2))
		})

		It("should preserve prior history entries as an immutable prefix", func() {
			c := seedCase(commander)

			first, err := service.ChangeStatus(commander, c.ID, casefile.ChangeStatusDTO{Status: rbac.StatusUnderInvestigation})
			Expect(err).NotTo(HaveOccurred())

			second, err := service.ChangeStatus(commander, c.ID, casefile.ChangeStatusDTO{Status: rbac.StatusSolved})
			Expect(err).NotTo(HaveOccurred())

			Expect(second.StatusHistory).To(HaveLen(3))
			Expect(second.StatusHistory[:2]).To(Equal(first.StatusHistory))
		})

		It("should record a status_changed activity with the case number", func() {
			c := seedCase(detective)

			_, err := service.ChangeStatus(detective, c.ID, casefile.ChangeStatusDTO{Status: rbac.StatusUnderInvestigation})
			Expect(err).NotTo(HaveOccurred())

			Expect(activity.records).To(HaveLen(1))
			Expect(activity.records[0].ActionType).To(Equal(casefile.ActionStatusChanged))
			Expect(activity.records[0].Description).To(Equal(
				fmt.Sprintf("Case %s status changed to Under Investigation", c.CaseNumber)))
		})

		It("should reject an unknown status before touching the case", func() {
			c := seedCase(commander)
			_, err := service.ChangeStatus(commander, c.ID, casefile.ChangeStatusDTO{Status: rbac.Status("Reopened")})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidStatus))
		})

		It("should return not found for a missing case", func() {
			_, err := service.ChangeStatus(commander, 9999, casefile.ChangeStatusDTO{Status: rbac.StatusSolved})
			Expect(err).To(Equal(internal.ErrCaseNotFound))
		})
	})

	Describe("AddNote", func() {
		It("should append a note attributed to the actor", func() {
			c := seedCase(constable)

			updated, err := service.AddNote(provMin, c.ID, casefile.AddNoteDTO{Note: "Requesting weekly progress updates"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.CaseNotes).To(HaveLen(1))
			Expect(updated.CaseNotes[0].Author).To(Equal("Thandi Nkosi"))
			Expect(updated.CaseNotes[0].Note).To(Equal("Requesting weekly progress updates"))
		})

		It("should reject a whitespace-only note without mutating the case", func() {
			c := seedCase(constable)

			_, err := service.AddNote(constable, c.ID, casefile.AddNoteDTO{Note: "   \t\n"})
			Expect(err).To(Equal(internal.ErrEmptyNote))

			stored, getErr := repo.GetByID(c.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(stored.CaseNotes).To(BeEmpty())
		})

		It("should record a note_added activity", func() {
			c := seedCase(detective)

			_, err := service.AddNote(detective, c.ID, casefile.AddNoteDTO{Note: "Canvassed the area for witnesses"})
			Expect(err).NotTo(HaveOccurred())

			Expect(activity.records).To(HaveLen(1))
			Expect(activity.records[0].ActionType).To(Equal(casefile.ActionNoteAdded))
			Expect(activity.records[0].Description).To(Equal(
				fmt.Sprintf("Note added to case %s", c.CaseNumber)))
		})

		It("should preserve note ordering across appends", func() {
			c := seedCase(detective)

			_, err := service.AddNote(detective, c.ID, casefile.AddNoteDTO{Note: "first"})
			Expect(err).NotTo(HaveOccurred())
			updated, err := service.AddNote(commander, c.ID, casefile.AddNoteDTO{Note: "second"})
			Expect(err).NotTo(HaveOccurred())

			Expect(updated.CaseNotes).To(HaveLen(2))
			Expect(updated.CaseNotes[0].Note).To(Equal("first"))
			Expect(updated.CaseNotes[1].Note).To(Equal("second"))
		})
	})

	Describe("AssignOfficer", func() {
		BeforeEach(func() {
			officers.officers[2] = &casefile.Officer{ID: 2, FullName: "Nomsa Khumalo", Role: rbac.RoleDetective}
			officers.officers[4] = &casefile.Officer{ID: 4, FullName: "Thandi Nkosi", Role: rbac.RoleProvincialMinister}
		})

		It("should let a Station Commander assign a Detective", func() {
			c := seedCase(constable)

			updated, err := service.AssignOfficer(commander, c.ID, casefile.AssignOfficerDTO{OfficerID: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.AssignedOfficerName).To(Equal("Nomsa Khumalo"))

			Expect(activity.records).To(HaveLen(1))
			Expect(activity.records[0].ActionType).To(Equal(casefile.ActionCaseAssigned))
			Expect(activity.records[0].Description).To(Equal(
				fmt.Sprintf("Case %s assigned to Nomsa Khumalo", c.CaseNumber)))
		})

		It("should refuse to assign a Provincial Minister", func() {
			c := seedCase(constable)

			_, err := service.AssignOfficer(commander, c.ID, casefile.AssignOfficerDTO{OfficerID: 4})
			Expect(err).To(Equal(internal.ErrOfficerNotAssign))

			stored, getErr := repo.GetByID(c.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(stored.AssignedOfficerName).To(Equal("Peter Dlamini"))
		})

		It("should deny roles without the assignment capability", func() {
			c := seedCase(constable)

			for _, actor := range []casefile.Actor{constable, detective, provMin, natMin} {
				_, err := service.AssignOfficer(actor, c.ID, casefile.AssignOfficerDTO{OfficerID: 2})
				Expect(err).To(Equal(internal.ErrPermissionDenied), "role %s", actor.Role)
			}
		})
	})

	Describe("AttachEvidence", func() {
		It("should append file URLs preserving upload order", func() {
			c := seedCase(detective)

			_, err := service.AttachEvidence(detective, c.ID, casefile.AttachEvidenceDTO{
				FileURLs: []string{"https://cdn.example/scene-1.jpg"},
			})
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.AttachEvidence(detective, c.ID, casefile.AttachEvidenceDTO{
				FileURLs: []string{"https://cdn.example/scene-2.jpg", "https://cdn.example/statement.pdf"},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(updated.EvidenceFiles).To(Equal([]string{
				"https://cdn.example/scene-1.jpg",
				"https://cdn.example/scene-2.jpg",
				"https://cdn.example/statement.pdf",
			}))
		})

		It("should deny minister roles", func() {
			c := seedCase(detective)

			_, err := service.AttachEvidence(natMin, c.ID, casefile.AttachEvidenceDTO{
				FileURLs: []string{"https://cdn.example/doc.pdf"},
			})
			Expect(err).To(Equal(internal.ErrPermissionDenied))
		})
	})

	Describe("DeleteCase", func() {
		It("should let a Station Commander delete a case", func() {
			c := seedCase(constable)

			Expect(service.DeleteCase(commander, c.ID)).To(Succeed())
			Expect(repo.deletedIDs).To(ContainElement(c.ID))

			_, err := repo.GetByID(c.ID)
			Expect(err).To(Equal(internal.ErrCaseNotFound))
		})

		It("should deny every other role", func() {
			c := seedCase(constable)

			for _, actor := range []casefile.Actor{constable, detective, provMin, natMin} {
				err := service.DeleteCase(actor, c.ID)
				Expect(err).To(Equal(internal.ErrPermissionDenied), "role %s", actor.Role)
			}
		})
	})

	Describe("ListCases", func() {
		It("should pin a Provincial Minister to their own province", func() {
			_, err := service.ListCases(provMin, casefile.ListFilter{Province: "Gauteng"})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Province).To(Equal("Western Cape"))
		})

		It("should pass the requested province through for a National Minister", func() {
			_, err := service.ListCases(natMin, casefile.ListFilter{Province: "Limpopo"})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Province).To(Equal("Limpopo"))
		})

		It("should leave field roles unscoped", func() {
			_, err := service.ListCases(constable, casefile.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Province).To(BeEmpty())
		})

		It("should clamp the page size to a sane default", func() {
			_, err := service.ListCases(constable, casefile.ListFilter{Limit: -5, Offset: -1})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Limit).To(Equal(50))
			Expect(repo.lastFilter.Offset).To(BeZero())
		})
	})

	Describe("GetCase", func() {
		It("should hide cases outside a Provincial Minister's province", func() {
			c := seedCase(constable) // Gauteng case, minister is Western Cape

			_, err := service.GetCase(provMin, c.ID)
			Expect(err).To(Equal(internal.ErrCaseNotFound))
		})

		It("should return cases inside the minister's province", func() {
			dto := validDTO()
			dto.Province = "Western Cape"
			c, err := service.CreateCase(constable, dto)
			Expect(err).NotTo(HaveOccurred())

			got, err := service.GetCase(provMin, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(c.ID))
		})
	})

	Describe("activity recording failures", func() {
		It("should not fail the case operation when recording fails", func() {
			activity.recordError = internal.NewInternalError("activity store down", nil)

			c, err := service.CreateCase(constable, validDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ID).To(BeNumerically(">", 0))
		})
	})
})
