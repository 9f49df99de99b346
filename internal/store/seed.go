package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/internal/models"
)

// LeaderMemberID is the reserved identity that holds every permission.
const LeaderMemberID = "member_001"

// Seed installs the default roster, an empty project list and the default
// settings when the store has no data yet. Existing data is left alone.
func Seed(ctx context.Context, s Store, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if s.Get(ctx, KeySettings) == nil {
		SetJSON(ctx, s, KeySettings, models.DefaultSettings(), logger)
		logger.Info("seeded default settings")
	}

	if s.Get(ctx, KeyMembers) == nil {
		SetJSON(ctx, s, KeyMembers, DefaultMembers(), logger)
		logger.Info("seeded default roster")
	}

	if s.Get(ctx, KeyProjects) == nil {
		SetJSON(ctx, s, KeyProjects, []models.Project{}, logger)
	}
}

// DefaultMembers returns the starting roster: the leader first, then five
// regular members, all with fresh stats.
func DefaultMembers() []models.Member {
	subjects := models.DefaultSettings().SubjectIDs()

	names := []struct {
		id     string
		name   string
		role   string
		leader bool
	}{
		{LeaderMemberID, "Mustafa", "Leader", true},
		{"member_002", "Mohammed", "Member", false},
		{"member_003", "Ibrahim", "Member", false},
		{"member_004", "Mazen", "Member", false},
		{"member_005", "Murtadha", "Member", false},
		{"member_006", "Pavel", "Member", false},
	}

	members := make([]models.Member, 0, len(names))
	for _, n := range names {
		permissions := models.DefaultMemberPermissions()
		if n.leader {
			permissions = models.AllPermissions()
		}
		members = append(members, models.Member{
			ID:           n.id,
			Name:         n.name,
			Role:         n.role,
			Avatar:       n.name[:1],
			Availability: models.AvailabilityAvailable,
			Skills:       []string{},
			Permissions:  permissions,
			Stats:        models.NewMemberStats(subjects),
		})
	}
	return members
}
