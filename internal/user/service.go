package user

import (
	"log/slog"
	"time"

	"github.com/saps-platform/case-management/internal"
	"github.com/saps-platform/case-management/internal/casefile"
	"github.com/saps-platform/case-management/internal/rbac"
)

type Repository interface {
	GetByID(userID int64) (*User, error)
	UpdateProfile(u *User) error
	ListByRoles(roles []rbac.Role) ([]*User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", userID)
		return nil, err
	}
	return u, nil
}

// SetupProfile binds name, role and province to a freshly registered account.
// The role is immutable once the profile is complete: later submissions with
// a different role are rejected, everything else is updatable.
func (s *Service) SetupProfile(userID int64, dto ProfileSetupDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("profile setup validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	role, _ := rbac.ParseRole(dto.SAPSRole)
	if u.ProfileComplete && u.SAPSRole != role {
		s.logger.Warn("role change rejected after profile setup",
			"user_id", userID,
			"current_role", u.SAPSRole,
			"requested_role", role)
		return nil, internal.ErrRoleLocked
	}

	u.FullName = dto.FullName
	u.SAPSRole = role
	u.Province = dto.Province
	u.Station = dto.Station
	u.BadgeNumber = dto.BadgeNumber
	u.ProfilePictureURL = dto.ProfilePictureURL
	u.ProfileComplete = true
	u.UpdatedAt = time.Now()

	if err := s.repo.UpdateProfile(u); err != nil {
		s.logger.Error("failed to update profile", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("profile setup complete",
		"user_id", userID,
		"role", u.SAPSRole,
		"province", u.Province)

	return u, nil
}

// ListAssignableOfficers returns the active Constables and Detectives a
// Station Commander can hand a case to.
func (s *Service) ListAssignableOfficers() ([]*User, error) {
	officers, err := s.repo.ListByRoles([]rbac.Role{rbac.RoleConstable, rbac.RoleDetective})
	if err != nil {
		s.logger.Error("failed to list assignable officers", "error", err)
		return nil, err
	}

	active := make([]*User, 0, len(officers))
	for _, officer := range officers {
		if officer.IsActive {
			active = append(active, officer)
		}
	}
	return active, nil
}

// GetOfficer adapts the user store to the case service's officer lookup.
func (s *Service) GetOfficer(id int64) (*casefile.Officer, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return &casefile.Officer{
		ID:       u.ID,
		FullName: u.FullName,
		Role:     u.SAPSRole,
	}, nil
}
