package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
)

type fakeMemberRepo struct {
	members []models.Member
}

func (f *fakeMemberRepo) List(ctx context.Context) ([]models.Member, error) {
	out := make([]models.Member, len(f.members))
	copy(out, f.members)
	return out, nil
}

func (f *fakeMemberRepo) Get(ctx context.Context, id string) (*models.Member, error) {
	for i := range f.members {
		if f.members[i].ID == id {
			m := f.members[i]
			return &m, nil
		}
	}
	return nil, errors.Clone(errors.ErrNotFound, "member not found")
}

func (f *fakeMemberRepo) Update(ctx context.Context, member models.Member) error {
	for i := range f.members {
		if f.members[i].ID == member.ID {
			f.members[i] = member
			return nil
		}
	}
	return errors.Clone(errors.ErrNotFound, "member not found")
}

func (f *fakeMemberRepo) Upsert(ctx context.Context, member models.Member) error {
	for i := range f.members {
		if f.members[i].ID == member.ID {
			f.members[i] = member
			return nil
		}
	}
	f.members = append(f.members, member)
	return nil
}

func testMember(id string, active int, availability models.Availability, mathExpertise float64) models.Member {
	return models.Member{
		ID:           id,
		Name:         id,
		Availability: availability,
		Stats: models.MemberStats{
			ActiveProjects:    active,
			ContributionScore: models.DefaultContributionScore,
			SubjectExpertise:  map[string]float64{"math": mathExpertise},
		},
	}
}

func newScoringService(repo *fakeMemberRepo) *ScoringService {
	svc := NewScoringService(repo, nil)
	fixed := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc
}

func TestPriorityScoreActiveTermNeverNegative(t *testing.T) {
	svc := newScoringService(&fakeMemberRepo{})

	base := testMember("m", 0, models.AvailabilityAway, models.DefaultExpertise)
	baseline := svc.PriorityScore(&base, "math", models.DefaultContributionScore)

	for _, active := range []int{4, 5, 10, 100} {
		m := testMember("m", active, models.AvailabilityAway, models.DefaultExpertise)
		got := svc.PriorityScore(&m, "math", models.DefaultContributionScore)
		// Active term is zero at four or more projects, never a deduction.
		assert.Equal(t, baseline-10, got, "active=%d", active)
	}
}

func TestPriorityScoreRecencyDefaultsForNewMembers(t *testing.T) {
	svc := newScoringService(&fakeMemberRepo{})

	fresh := testMember("fresh", 0, models.AvailabilityAway, models.DefaultExpertise)

	recent := testMember("recent", 0, models.AvailabilityAway, models.DefaultExpertise)
	yesterday := svc.now().Add(-24 * time.Hour)
	recent.Stats.LastProjectDate = &yesterday

	ancient := testMember("ancient", 0, models.AvailabilityAway, models.DefaultExpertise)
	longAgo := svc.now().Add(-90 * 24 * time.Hour)
	ancient.Stats.LastProjectDate = &longAgo

	freshScore := svc.PriorityScore(&fresh, "math", models.DefaultContributionScore)
	recentScore := svc.PriorityScore(&recent, "math", models.DefaultContributionScore)
	ancientScore := svc.PriorityScore(&ancient, "math", models.DefaultContributionScore)

	// Null recency counts as the 30-day ceiling, as does anything older.
	assert.Equal(t, freshScore, ancientScore)
	assert.Equal(t, freshScore-58, recentScore)
}

func TestPriorityScoreContributionBalance(t *testing.T) {
	svc := newScoringService(&fakeMemberRepo{})

	poor := testMember("poor", 0, models.AvailabilityAvailable, models.DefaultExpertise)
	poor.Stats.ContributionScore = 50

	rich := testMember("rich", 0, models.AvailabilityAvailable, models.DefaultExpertise)
	rich.Stats.ContributionScore = 150

	mean := 100.0
	poorScore := svc.PriorityScore(&poor, "math", mean)
	richScore := svc.PriorityScore(&rich, "math", mean)

	// Below the mean gets (mean-score)*0.2 extra, at or above gets nothing.
	assert.Equal(t, poorScore-10, richScore)
}

func TestSuggestedTeamRanking(t *testing.T) {
	repo := &fakeMemberRepo{members: []models.Member{
		testMember("member_001", 0, models.AvailabilityAvailable, 5),
		testMember("member_002", 2, models.AvailabilityBusy, 3),
		testMember("member_003", 5, models.AvailabilityAway, 1),
	}}
	svc := newScoringService(repo)

	ranked, err := svc.SuggestedTeam(context.Background(), "math", 2)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "member_001", ranked[0].Member.ID)
	assert.Equal(t, "member_002", ranked[1].Member.ID)
	assert.Equal(t, "member_003", ranked[2].Member.ID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.Greater(t, ranked[1].Score, ranked[2].Score)

	assert.True(t, ranked[0].Suggested)
	assert.True(t, ranked[1].Suggested)
	assert.False(t, ranked[2].Suggested)
}

func TestSuggestedTeamStableTieBreak(t *testing.T) {
	// Identical members tie on score; roster order must survive the sort.
	repo := &fakeMemberRepo{members: []models.Member{
		testMember("member_001", 0, models.AvailabilityAvailable, 3),
		testMember("member_002", 0, models.AvailabilityAvailable, 3),
		testMember("member_003", 0, models.AvailabilityAvailable, 3),
	}}
	svc := newScoringService(repo)

	ranked, err := svc.SuggestedTeam(context.Background(), "math", 5)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "member_001", ranked[0].Member.ID)
	assert.Equal(t, "member_002", ranked[1].Member.ID)
	assert.Equal(t, "member_003", ranked[2].Member.ID)
	for _, r := range ranked {
		assert.True(t, r.Suggested)
	}
}

func TestSuggestedTeamEmptyRoster(t *testing.T) {
	svc := newScoringService(&fakeMemberRepo{})

	ranked, err := svc.SuggestedTeam(context.Background(), "math", 3)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestMemberRankingByContribution(t *testing.T) {
	low := testMember("member_001", 0, models.AvailabilityAvailable, 3)
	low.Stats.ContributionScore = 40
	high := testMember("member_002", 0, models.AvailabilityAvailable, 3)
	high.Stats.ContributionScore = 180
	mid := testMember("member_003", 0, models.AvailabilityAvailable, 3)
	mid.Stats.ContributionScore = 100

	svc := newScoringService(&fakeMemberRepo{members: []models.Member{low, high, mid}})

	ranked, err := svc.MemberRanking(context.Background())
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "member_002", ranked[0].ID)
	assert.Equal(t, "member_003", ranked[1].ID)
	assert.Equal(t, "member_001", ranked[2].ID)
}

func TestMemberRankingStableOnTies(t *testing.T) {
	// Equal contribution keeps roster order.
	repo := &fakeMemberRepo{members: []models.Member{
		testMember("member_001", 0, models.AvailabilityAvailable, 3),
		testMember("member_002", 0, models.AvailabilityAvailable, 3),
	}}
	svc := newScoringService(repo)

	ranked, err := svc.MemberRanking(context.Background())
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "member_001", ranked[0].ID)
	assert.Equal(t, "member_002", ranked[1].ID)
}

func TestAssignProjectUpdatesCounters(t *testing.T) {
	repo := &fakeMemberRepo{members: []models.Member{
		testMember("member_001", 1, models.AvailabilityAvailable, 3),
	}}
	svc := newScoringService(repo)

	require.NoError(t, svc.AssignProject(context.Background(), "member_001", "proj_001", "math"))

	m := repo.members[0]
	assert.Equal(t, 2, m.Stats.ActiveProjects)
	assert.Equal(t, 1, m.Stats.TotalProjects)
	require.NotNil(t, m.Stats.LastProjectDate)
	assert.Equal(t, svc.now().UTC(), *m.Stats.LastProjectDate)
}

func TestAssignProjectUnknownMemberIsNoOp(t *testing.T) {
	repo := &fakeMemberRepo{}
	svc := newScoringService(repo)

	assert.NoError(t, svc.AssignProject(context.Background(), "member_404", "proj_001", "math"))
}

func TestCompleteProjectFloorsActiveAtZero(t *testing.T) {
	repo := &fakeMemberRepo{members: []models.Member{
		testMember("member_001", 1, models.AvailabilityAvailable, 3),
	}}
	svc := newScoringService(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.CompleteProject(ctx, "member_001", "math", nil))
	}

	m := repo.members[0]
	assert.Equal(t, 0, m.Stats.ActiveProjects)
	assert.Equal(t, 5, m.Stats.CompletedProjects)
	assert.Equal(t, models.DefaultContributionScore+50, m.Stats.ContributionScore)
}

func TestCompleteProjectExpertiseGrowthCapped(t *testing.T) {
	repo := &fakeMemberRepo{members: []models.Member{
		testMember("member_001", 0, models.AvailabilityAvailable, 4.0),
	}}
	svc := newScoringService(repo)
	ctx := context.Background()
	grade := 100.0

	previous := 4.0
	for i := 0; i < 6; i++ {
		require.NoError(t, svc.CompleteProject(ctx, "member_001", "math", &grade))
		current := repo.members[0].Stats.SubjectExpertise["math"]
		assert.GreaterOrEqual(t, current, previous)
		assert.LessOrEqual(t, current, models.MaxExpertise)
		previous = current
	}
	assert.Equal(t, models.MaxExpertise, repo.members[0].Stats.SubjectExpertise["math"])
}

func TestCompleteProjectLowGradeLeavesExpertise(t *testing.T) {
	repo := &fakeMemberRepo{members: []models.Member{
		testMember("member_001", 0, models.AvailabilityAvailable, 3.0),
	}}
	svc := newScoringService(repo)
	grade := 79.0

	require.NoError(t, svc.CompleteProject(context.Background(), "member_001", "math", &grade))
	assert.Equal(t, 3.0, repo.members[0].Stats.SubjectExpertise["math"])
}

func TestWorkloadBalance(t *testing.T) {
	svc := newScoringService(&fakeMemberRepo{})
	balanced, err := svc.IsWorkloadBalanced(context.Background())
	require.NoError(t, err)
	assert.True(t, balanced, "empty roster counts as balanced")

	even := &fakeMemberRepo{members: []models.Member{
		testMember("member_001", 0, models.AvailabilityAvailable, 3),
		testMember("member_002", 0, models.AvailabilityAvailable, 3),
	}}
	even.members[0].Stats.TotalProjects = 4
	even.members[1].Stats.TotalProjects = 4
	svc = newScoringService(even)
	balanced, err = svc.IsWorkloadBalanced(context.Background())
	require.NoError(t, err)
	assert.True(t, balanced)

	skewed := &fakeMemberRepo{members: []models.Member{
		testMember("member_001", 0, models.AvailabilityAvailable, 3),
		testMember("member_002", 0, models.AvailabilityAvailable, 3),
	}}
	skewed.members[0].Stats.TotalProjects = 9
	skewed.members[1].Stats.TotalProjects = 1
	svc = newScoringService(skewed)
	balanced, err = svc.IsWorkloadBalanced(context.Background())
	require.NoError(t, err)
	assert.False(t, balanced)
}

func TestWorkloadDistributionPercentages(t *testing.T) {
	repo := &fakeMemberRepo{members: []models.Member{
		testMember("member_001", 0, models.AvailabilityAvailable, 3),
		testMember("member_002", 0, models.AvailabilityAvailable, 3),
	}}
	repo.members[0].Stats.TotalProjects = 3
	repo.members[1].Stats.TotalProjects = 1
	svc := newScoringService(repo)

	shares, err := svc.WorkloadDistribution(context.Background())
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.InDelta(t, 75.0, shares[0].Percentage, 0.001)
	assert.InDelta(t, 25.0, shares[1].Percentage, 0.001)
}
