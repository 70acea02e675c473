package casefile

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/saps-platform/case-management/internal"
	"github.com/saps-platform/case-management/internal/rbac"
)

// Actor is the authenticated user performing a case operation, resolved by
// the auth middleware before the service is called.
type Actor struct {
	ID       int64
	Email    string
	FullName string
	Role     rbac.Role
	Province string
}

// Officer is the subset of a user profile needed for case assignment.
type Officer struct {
	ID       int64
	FullName string
	Role     rbac.Role
}

// Repository defines the data access methods for cases.
type Repository interface {
	Create(c *Case) error
	GetByID(id int64) (*Case, error)
	List(filter ListFilter) ([]*Case, error)
	Update(c *Case) error
	Delete(id int64) error
}

// ActivityRecorder persists an activity feed entry. Recording is best effort:
// the case operation has already committed when it runs, so failures are
// logged and swallowed rather than unwinding the mutation.
type ActivityRecorder interface {
	Record(actionType string, caseID int64, caseNumber, description, userName, province string) error
}

// OfficerDirectory looks up users eligible for case assignment.
type OfficerDirectory interface {
	GetOfficer(id int64) (*Officer, error)
}

const (
	ActionCaseCreated   = "case_created"
	ActionStatusChanged = "status_changed"
	ActionNoteAdded     = "note_added"
	ActionCaseAssigned  = "case_assigned"
)

// caseNumberAttempts bounds regeneration when a freshly minted case number
// collides with an existing row.
const caseNumberAttempts = 5

// Service handles case workflow business logic. Every mutating operation
// authorizes first against the role policy and fails without touching the
// case when the actor's profile does not permit it.
type Service struct {
	repo     Repository
	policy   *rbac.Policy
	activity ActivityRecorder
	officers OfficerDirectory
	logger   *slog.Logger
}

func NewService(repo Repository, policy *rbac.Policy, activity ActivityRecorder, officers OfficerDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		policy:   policy,
		activity: activity,
		officers: officers,
		logger:   logger,
	}
}

// CreateCase opens a new case. The case number is generated server-side, the
// status starts at Reported with a seeded history entry, and the reporting
// actor becomes the assigned officer until a commander reassigns it.
func (s *Service) CreateCase(actor Actor, dto CreateCaseDTO) (*Case, error) {
	if !s.policy.Can(actor.Role, rbac.CanCreateCase) {
		s.logger.Warn("create case denied", "user_id", actor.ID, "role", actor.Role)
		return nil, internal.ErrPermissionDenied
	}

	if err := dto.Validate(); err != nil {
		s.logger.Error("case validation failed", "error", err, "user_id", actor.ID)
		return nil, err
	}

	priority := dto.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	now := time.Now()
	c := &Case{
		CrimeType:           dto.CrimeType,
		Province:            dto.Province,
		District:            dto.District,
		LocationAddress:     dto.LocationAddress,
		IncidentDate:        dto.IncidentDate,
		ReportedDate:        now,
		Priority:            priority,
		Description:         dto.Description,
		VictimInfo:          dto.VictimInfo,
		SuspectInfo:         dto.SuspectInfo,
		Status:              rbac.StatusReported,
		EvidenceFiles:       []string{},
		AssignedOfficer:     actor.Email,
		AssignedOfficerName: actor.FullName,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	c.appendStatus(rbac.StatusReported, actor.FullName, now)

	if err := s.createWithFreshNumber(c); err != nil {
		s.logger.Error("failed to create case", "error", err, "user_id", actor.ID)
		return nil, err
	}

	s.record(ActionCaseCreated, c,
		fmt.Sprintf("New %s case reported in %s", c.CrimeType, c.Province), actor.FullName)

	s.logger.Info("case created",
		"case_id", c.ID,
		"case_number", c.CaseNumber,
		"crime_type", c.CrimeType,
		"province", c.Province,
		"user_id", actor.ID)

	return c, nil
}

// createWithFreshNumber retries case creation with a regenerated number when
// the unique index on case_number rejects a collision.
func (s *Service) createWithFreshNumber(c *Case) error {
	var err error
	for attempt := 0; attempt < caseNumberAttempts; attempt++ {
		c.CaseNumber = NewCaseNumber()
		err = s.repo.Create(c)
		if err == nil {
			return nil
		}
		appErr, ok := internal.IsAppError(err)
		if !ok || appErr.Code != internal.ErrCodeCaseNumberConflict {
			return err
		}
		s.logger.Warn("case number collision, regenerating", "case_number", c.CaseNumber)
	}
	return err
}

// GetCase fetches a single case, applying the same province scoping as
// ListCases.
func (s *Service) GetCase(actor Actor, caseID int64) (*Case, error) {
	c, err := s.repo.GetByID(caseID)
	if err != nil {
		return nil, err
	}
	if scoped := s.scopedProvince(actor, ""); scoped != "" && c.Province != scoped {
		s.logger.Warn("case outside actor province", "case_id", caseID, "user_id", actor.ID, "province", scoped)
		return nil, internal.ErrCaseNotFound
	}
	return c, nil
}

// ListCases returns cases matching the filter. Oversight roles without
// all-province visibility are pinned to their own province regardless of the
// requested filter.
func (s *Service) ListCases(actor Actor, filter ListFilter) ([]*Case, error) {
	filter.Province = s.scopedProvince(actor, filter.Province)

	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	cases, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list cases", "error", err, "user_id", actor.ID)
		return nil, err
	}
	return cases, nil
}

// ChangeStatus moves a case to target if the actor's role allows that status.
// A transition to the current status is not deduplicated: it still appends a
// history entry, which the timeline renders as a touch on the case.
func (s *Service) ChangeStatus(actor Actor, caseID int64, dto ChangeStatusDTO) (*Case, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if !s.policy.CanTransitionTo(actor.Role, dto.Status) {
		s.logger.Warn("status change denied",
			"case_id", caseID,
			"user_id", actor.ID,
			"role", actor.Role,
			"target_status", dto.Status)
		return nil, internal.ErrStatusNotPermitted
	}

	c, err := s.repo.GetByID(caseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c.appendStatus(dto.Status, actor.FullName, now)
	c.UpdatedAt = now

	if err := s.repo.Update(c); err != nil {
		s.logger.Error("failed to update case status", "error", err, "case_id", caseID)
		return nil, err
	}

	s.record(ActionStatusChanged, c,
		fmt.Sprintf("Case %s status changed to %s", c.CaseNumber, dto.Status), actor.FullName)

	s.logger.Info("case status changed",
		"case_id", c.ID,
		"case_number", c.CaseNumber,
		"status", dto.Status,
		"user_id", actor.ID)

	return c, nil
}

// AddNote appends a note authored by the actor. Every role may add notes,
// including the minister roles that can touch nothing else on a case.
func (s *Service) AddNote(actor Actor, caseID int64, dto AddNoteDTO) (*Case, error) {
	if !s.policy.Can(actor.Role, rbac.CanAddNotes) {
		s.logger.Warn("add note denied", "case_id", caseID, "user_id", actor.ID, "role", actor.Role)
		return nil, internal.ErrPermissionDenied
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(caseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c.appendNote(actor.FullName, dto.Note, now)
	c.UpdatedAt = now

	if err := s.repo.Update(c); err != nil {
		s.logger.Error("failed to add note", "error", err, "case_id", caseID)
		return nil, err
	}

	s.record(ActionNoteAdded, c,
		fmt.Sprintf("Note added to case %s", c.CaseNumber), actor.FullName)

	s.logger.Info("note added", "case_id", c.ID, "case_number", c.CaseNumber, "user_id", actor.ID)

	return c, nil
}

// AssignOfficer hands the case to a Constable or Detective. Only roles with
// the assignment capability (Station Commander) reach past the first check.
func (s *Service) AssignOfficer(actor Actor, caseID int64, dto AssignOfficerDTO) (*Case, error) {
	if !s.policy.Can(actor.Role, rbac.CanAssignOfficers) {
		s.logger.Warn("assign officer denied", "case_id", caseID, "user_id", actor.ID, "role", actor.Role)
		return nil, internal.ErrPermissionDenied
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	officer, err := s.officers.GetOfficer(dto.OfficerID)
	if err != nil {
		s.logger.Error("officer lookup failed", "error", err, "officer_id", dto.OfficerID)
		return nil, err
	}

	if !rbac.AssignableRole(officer.Role) {
		s.logger.Warn("officer not assignable",
			"case_id", caseID,
			"officer_id", officer.ID,
			"officer_role", officer.Role)
		return nil, internal.ErrOfficerNotAssign
	}

	c, err := s.repo.GetByID(caseID)
	if err != nil {
		return nil, err
	}

	c.AssignedOfficer = fmt.Sprintf("%d", officer.ID)
	c.AssignedOfficerName = officer.FullName
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(c); err != nil {
		s.logger.Error("failed to assign officer", "error", err, "case_id", caseID)
		return nil, err
	}

	s.record(ActionCaseAssigned, c,
		fmt.Sprintf("Case %s assigned to %s", c.CaseNumber, officer.FullName), actor.FullName)

	s.logger.Info("case assigned",
		"case_id", c.ID,
		"case_number", c.CaseNumber,
		"officer_id", officer.ID,
		"user_id", actor.ID)

	return c, nil
}

// AttachEvidence records uploaded file URLs on the case, preserving upload
// order. The files themselves live in external storage; the case only keeps
// opaque URLs.
func (s *Service) AttachEvidence(actor Actor, caseID int64, dto AttachEvidenceDTO) (*Case, error) {
	if !s.policy.Can(actor.Role, rbac.CanUploadEvidence) {
		s.logger.Warn("attach evidence denied", "case_id", caseID, "user_id", actor.ID, "role", actor.Role)
		return nil, internal.ErrPermissionDenied
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(caseID)
	if err != nil {
		return nil, err
	}

	c.EvidenceFiles = append(c.EvidenceFiles, dto.FileURLs...)
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(c); err != nil {
		s.logger.Error("failed to attach evidence", "error", err, "case_id", caseID)
		return nil, err
	}

	s.logger.Info("evidence attached",
		"case_id", c.ID,
		"case_number", c.CaseNumber,
		"files", len(dto.FileURLs),
		"user_id", actor.ID)

	return c, nil
}

// DeleteCase removes a case entirely. Destructive and commander-only; the
// activity trail for the case is left in place.
func (s *Service) DeleteCase(actor Actor, caseID int64) error {
	if !s.policy.Can(actor.Role, rbac.CanDeleteCases) {
		s.logger.Warn("delete case denied", "case_id", caseID, "user_id", actor.ID, "role", actor.Role)
		return internal.ErrPermissionDenied
	}

	c, err := s.repo.GetByID(caseID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(c.ID); err != nil {
		s.logger.Error("failed to delete case", "error", err, "case_id", caseID)
		return err
	}

	s.logger.Info("case deleted",
		"case_id", c.ID,
		"case_number", c.CaseNumber,
		"user_id", actor.ID)

	return nil
}

// scopedProvince pins oversight roles without all-province visibility to
// their own province. Field roles keep the caller-supplied filter.
func (s *Service) scopedProvince(actor Actor, requested string) string {
	if actor.Role == rbac.RoleProvincialMinister &&
		!s.policy.Can(actor.Role, rbac.CanViewAllProvinces) &&
		actor.Province != "" {
		return actor.Province
	}
	return requested
}

func (s *Service) record(actionType string, c *Case, description, userName string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(actionType, c.ID, c.CaseNumber, description, userName, c.Province); err != nil {
		s.logger.Error("failed to record activity",
			"error", err,
			"action_type", actionType,
			"case_id", c.ID)
	}
}
