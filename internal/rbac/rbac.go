package rbac

// Role is a fixed SAPS rank. A user's role is assigned at profile setup and
// is immutable afterwards; changing it is an out-of-band administrative
// action.
type Role string

const (
	RoleConstable          Role = "Constable"
	RoleDetective          Role = "Detective"
	RoleStationCommander   Role = "Station Commander"
	RoleProvincialMinister Role = "Provincial Minister"
	RoleNationalMinister   Role = "National Minister"
)

// Roles lists every known role in rank order.
func Roles() []Role {
	return []Role{
		RoleConstable,
		RoleDetective,
		RoleStationCommander,
		RoleProvincialMinister,
		RoleNationalMinister,
	}
}

// ParseRole maps a raw role string onto the enum. Unknown strings come back
// as-is with ok=false; callers treat those as the default (Constable) profile
// rather than failing.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleConstable, RoleDetective, RoleStationCommander, RoleProvincialMinister, RoleNationalMinister:
		return Role(s), true
	}
	return Role(s), false
}

// Status is a stage of the investigative pipeline.
type Status string

const (
	StatusReported           Status = "Reported"
	StatusUnderInvestigation Status = "Under Investigation"
	StatusEvidenceCollection Status = "Evidence Collection"
	StatusSuspectIdentified  Status = "Suspect Identified"
	StatusAwaitingArrest     Status = "Awaiting Arrest"
	StatusArrestMade         Status = "Arrest Made"
	StatusInCourt            Status = "In Court"
	StatusSolved             Status = "Solved"
	StatusClosed             Status = "Closed"
	StatusColdCase           Status = "Cold Case"
)

// StatusOrder is the conventional pipeline ordering, used for timeline
// display only. The workflow deliberately does not force transitions to move
// forward through it: any role-permitted target is reachable from any
// current status.
func StatusOrder() []Status {
	return []Status{
		StatusReported,
		StatusUnderInvestigation,
		StatusEvidenceCollection,
		StatusSuspectIdentified,
		StatusAwaitingArrest,
		StatusArrestMade,
		StatusInCourt,
		StatusSolved,
		StatusClosed,
		StatusColdCase,
	}
}

// ValidStatus reports whether s names a known pipeline stage.
func ValidStatus(s Status) bool {
	for _, known := range StatusOrder() {
		if s == known {
			return true
		}
	}
	return false
}

// Capability names one of the boolean permissions on a Profile.
type Capability string

const (
	CanCreateCase       Capability = "canCreateCase"
	CanUploadEvidence   Capability = "canUploadEvidence"
	CanAddNotes         Capability = "canAddNotes"
	CanViewAllProvinces Capability = "canViewAllProvinces"
	CanGenerateReports  Capability = "canGenerateReports"
	CanDeleteCases      Capability = "canDeleteCases"
	CanAssignOfficers   Capability = "canAssignOfficers"
)

// Profile is the static capability set bound to a role.
type Profile struct {
	CreateCase            bool
	AllowedTargetStatuses []Status
	UploadEvidence        bool
	AddNotes              bool
	ViewAllProvinces      bool
	GenerateReports       bool
	DeleteCases           bool
	AssignOfficers        bool
}

// Policy answers what a role may do, backed by an immutable table built once
// at startup and injected wherever authorization is needed.
type Policy struct {
	profiles map[Role]Profile
}

// DefaultProfiles is the SAPS permission matrix.
func DefaultProfiles() map[Role]Profile {
	return map[Role]Profile{
		RoleConstable: {
			CreateCase:            true,
			AllowedTargetStatuses: []Status{StatusReported, StatusUnderInvestigation},
			UploadEvidence:        true,
			AddNotes:              true,
		},
		RoleDetective: {
			CreateCase: true,
			AllowedTargetStatuses: []Status{
				StatusUnderInvestigation,
				StatusEvidenceCollection,
				StatusSuspectIdentified,
				StatusAwaitingArrest,
				StatusArrestMade,
			},
			UploadEvidence: true,
			AddNotes:       true,
		},
		RoleStationCommander: {
			CreateCase:            true,
			AllowedTargetStatuses: StatusOrder(),
			UploadEvidence:        true,
			AddNotes:              true,
			GenerateReports:       true,
			DeleteCases:           true,
			AssignOfficers:        true,
		},
		RoleProvincialMinister: {
			// View-only oversight of their own province.
			AddNotes:        true,
			GenerateReports: true,
		},
		RoleNationalMinister: {
			AddNotes:         true,
			ViewAllProvinces: true,
			GenerateReports:  true,
		},
	}
}

// NewPolicy builds a Policy from a role->profile table. Passing nil uses
// DefaultProfiles. The table is copied so callers cannot mutate it later.
func NewPolicy(profiles map[Role]Profile) *Policy {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	copied := make(map[Role]Profile, len(profiles))
	for role, profile := range profiles {
		profile.AllowedTargetStatuses = append([]Status(nil), profile.AllowedTargetStatuses...)
		copied[role] = profile
	}
	return &Policy{profiles: copied}
}

// ProfileFor returns the profile for role. Unrecognized roles fall back to
// the Constable profile, the most restrictive one; this never fails.
func (p *Policy) ProfileFor(role Role) Profile {
	if profile, ok := p.profiles[role]; ok {
		return profile
	}
	return p.profiles[RoleConstable]
}

// CanTransitionTo reports whether role may move a case into target.
func (p *Policy) CanTransitionTo(role Role, target Status) bool {
	for _, allowed := range p.ProfileFor(role).AllowedTargetStatuses {
		if allowed == target {
			return true
		}
	}
	return false
}

// Can reports whether role holds the named capability. Unknown capability
// names yield false, matching the fail-closed default.
func (p *Policy) Can(role Role, capability Capability) bool {
	profile := p.ProfileFor(role)
	switch capability {
	case CanCreateCase:
		return profile.CreateCase
	case CanUploadEvidence:
		return profile.UploadEvidence
	case CanAddNotes:
		return profile.AddNotes
	case CanViewAllProvinces:
		return profile.ViewAllProvinces
	case CanGenerateReports:
		return profile.GenerateReports
	case CanDeleteCases:
		return profile.DeleteCases
	case CanAssignOfficers:
		return profile.AssignOfficers
	}
	return false
}

// AllowedTargetStatuses returns the ordered set of statuses role may set,
// copied so callers can't mutate the table. Ministers get an empty slice.
func (p *Policy) AllowedTargetStatuses(role Role) []Status {
	return append([]Status(nil), p.ProfileFor(role).AllowedTargetStatuses...)
}

// AssignableRole reports whether a user with this role can be assigned to a
// case as investigating officer. Only field officers qualify.
func AssignableRole(role Role) bool {
	return role == RoleConstable || role == RoleDetective
}
