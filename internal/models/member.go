package models

import "time"

// Availability represents a member's current capacity to take work.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityAway      Availability = "away"
)

const (
	// DefaultExpertise is the midpoint proficiency assumed for a subject a
	// member has no recorded history in.
	DefaultExpertise = 3.0
	// MaxExpertise bounds per-subject proficiency.
	MaxExpertise = 5.0
	// DefaultContributionScore is granted to freshly provisioned members.
	DefaultContributionScore = 100.0
)

// MemberStats carries the longitudinal workload counters maintained by the
// scoring engine.
type MemberStats struct {
	TotalProjects     int                `json:"total_projects"`
	CompletedProjects int                `json:"completed_projects"`
	ActiveProjects    int                `json:"active_projects"`
	LastProjectDate   *time.Time         `json:"last_project_date,omitempty"`
	ContributionScore float64            `json:"contribution_score"`
	SubjectExpertise  map[string]float64 `json:"subject_expertise"`
}

// Member is a roster entry. Members are never hard-deleted; the roster is
// retained for audit history.
type Member struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Role         string       `json:"role"`
	Avatar       string       `json:"avatar"`
	Email        string       `json:"email"`
	Availability Availability `json:"availability"`
	Skills       []string     `json:"skills"`
	Permissions  []string     `json:"permissions"`
	Stats        MemberStats  `json:"stats"`
}

// NewMemberStats builds zeroed stats with midpoint expertise for each of the
// given subjects. Defaults are applied here, at construction, so read sites
// never need nil checks.
func NewMemberStats(subjectIDs []string) MemberStats {
	expertise := make(map[string]float64, len(subjectIDs))
	for _, id := range subjectIDs {
		expertise[id] = DefaultExpertise
	}
	return MemberStats{
		ContributionScore: DefaultContributionScore,
		SubjectExpertise:  expertise,
	}
}

// Normalize fills zero-valued fields with safe defaults after
// deserialization.
func (m *Member) Normalize() {
	if m.Availability == "" {
		m.Availability = AvailabilityAvailable
	}
	if m.Skills == nil {
		m.Skills = []string{}
	}
	if m.Permissions == nil {
		m.Permissions = []string{}
	}
	if m.Stats.SubjectExpertise == nil {
		m.Stats.SubjectExpertise = map[string]float64{}
	}
}

// ExpertiseFor returns the member's proficiency for a subject, applying the
// midpoint default for unknown subjects.
func (s MemberStats) ExpertiseFor(subjectID string) float64 {
	if v, ok := s.SubjectExpertise[subjectID]; ok {
		return v
	}
	return DefaultExpertise
}

// UpdateMemberRequest carries the editable roster fields. Nil pointers mean
// "leave unchanged". Permissions may only be changed by the leader.
type UpdateMemberRequest struct {
	Name        *string   `json:"name,omitempty"`
	Role        *string   `json:"role,omitempty"`
	Avatar      *string   `json:"avatar,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Skills      *[]string `json:"skills,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}

// SetAvailabilityRequest changes a member's capacity flag.
type SetAvailabilityRequest struct {
	Availability Availability `json:"availability" validate:"required,oneof=available busy away"`
}

// RosterTotals aggregates counters across the whole roster.
type RosterTotals struct {
	TotalMembers      int `json:"total_members"`
	TotalProjects     int `json:"total_projects"`
	CompletedProjects int `json:"completed_projects"`
	ActiveProjects    int `json:"active_projects"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
