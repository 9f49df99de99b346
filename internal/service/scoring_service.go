package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/internal/models"
)

const (
	recencyCeilingDays = 30
	recencyWeight      = 2.0
	activePenaltyStep  = 3.0
	activeBaseline     = 10.0
	expertiseWeight    = 1.5
	balanceWeight      = 0.2

	bonusAvailable = 10.0
	bonusBusy      = 3.0

	gradeExpertiseThreshold = 80.0
	expertiseStep           = 0.5
	completionBonus         = 10.0

	workloadBalanceSpread = 30.0
)

// ScoringMemberRepository is the roster access the scoring engine needs.
type ScoringMemberRepository interface {
	List(ctx context.Context) ([]models.Member, error)
	Get(ctx context.Context, id string) (*models.Member, error)
	Update(ctx context.Context, member models.Member) error
}

// RankedMember is one roster entry with its computed suitability score.
type RankedMember struct {
	Member    models.Member `json:"member"`
	Score     int           `json:"score"`
	Suggested bool          `json:"suggested"`
}

// WorkloadShare is a member's slice of the total project count.
type WorkloadShare struct {
	MemberID   string  `json:"member_id"`
	Name       string  `json:"name"`
	Projects   int     `json:"projects"`
	Percentage float64 `json:"percentage"`
}

// ScoringService ranks members for assignment and maintains the workload
// counters that feed back into future rankings.
type ScoringService struct {
	members ScoringMemberRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewScoringService creates a scoring service.
func NewScoringService(members ScoringMemberRepository, logger *zap.Logger) *ScoringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoringService{
		members: members,
		logger:  logger,
		now:     time.Now,
	}
}

// PriorityScore computes the suitability of one member for a subject.
// meanContribution is the roster-wide average contribution score; members
// below the mean get a mild progressive boost.
func (s *ScoringService) PriorityScore(member *models.Member, subjectID string, meanContribution float64) int {
	now := s.now()

	days := float64(recencyCeilingDays)
	if member.Stats.LastProjectDate != nil {
		elapsed := math.Floor(now.Sub(*member.Stats.LastProjectDate).Hours() / 24)
		days = math.Min(math.Max(elapsed, 0), recencyCeilingDays)
	}
	score := days * recencyWeight

	score += math.Max(activeBaseline-float64(member.Stats.ActiveProjects)*activePenaltyStep, 0)

	score += member.Stats.ExpertiseFor(subjectID) * expertiseWeight

	switch member.Availability {
	case models.AvailabilityAvailable:
		score += bonusAvailable
	case models.AvailabilityBusy:
		score += bonusBusy
	}

	if member.Stats.ContributionScore < meanContribution {
		score += (meanContribution - member.Stats.ContributionScore) * balanceWeight
	}

	return int(math.Round(score))
}

// SuggestedTeam ranks the whole roster for a subject, descending by score.
// The sort is stable, so ties keep roster order. The top teamSize entries
// are flagged suggested; the full ranking is returned either way.
func (s *ScoringService) SuggestedTeam(ctx context.Context, subjectID string, teamSize int) ([]RankedMember, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []RankedMember{}, nil
	}

	mean := meanContribution(members)

	ranked := make([]RankedMember, 0, len(members))
	for i := range members {
		ranked = append(ranked, RankedMember{
			Member: members[i],
			Score:  s.PriorityScore(&members[i], subjectID, mean),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	for i := 0; i < teamSize && i < len(ranked); i++ {
		ranked[i].Suggested = true
	}

	return ranked, nil
}

// AssignProject bumps the member's workload counters and stamps recency.
// An unknown member id is a logged no-op.
func (s *ScoringService) AssignProject(ctx context.Context, memberID, projectID, subjectID string) error {
	member, err := s.members.Get(ctx, memberID)
	if err != nil {
		s.logger.Warn("assignment for unknown member skipped",
			zap.String("member_id", memberID),
			zap.String("project_id", projectID))
		return nil
	}

	now := s.now().UTC()
	member.Stats.ActiveProjects++
	member.Stats.TotalProjects++
	member.Stats.LastProjectDate = &now

	return s.members.Update(ctx, *member)
}

// CompleteProject settles a member's counters after a project closes. A
// grade of 80 or above grows subject expertise by half a point, capped at
// the maximum. Expertise never decreases.
func (s *ScoringService) CompleteProject(ctx context.Context, memberID, subjectID string, grade *float64) error {
	member, err := s.members.Get(ctx, memberID)
	if err != nil {
		s.logger.Warn("completion for unknown member skipped", zap.String("member_id", memberID))
		return nil
	}

	if member.Stats.ActiveProjects > 0 {
		member.Stats.ActiveProjects--
	}
	member.Stats.CompletedProjects++
	member.Stats.ContributionScore += completionBonus

	if grade != nil && *grade >= gradeExpertiseThreshold {
		current := member.Stats.ExpertiseFor(subjectID)
		member.Stats.SubjectExpertise[subjectID] = math.Min(current+expertiseStep, models.MaxExpertise)
	}

	return s.members.Update(ctx, *member)
}

// MemberRanking returns the roster ordered by contribution score,
// descending. Unlike the priority ranking this is subject-independent; ties
// keep roster order.
func (s *ScoringService) MemberRanking(ctx context.Context) ([]models.Member, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Stats.ContributionScore > members[j].Stats.ContributionScore
	})
	return members, nil
}

// WorkloadDistribution returns each member's percentage share of the total
// project count. An empty roster or zero total yields zero shares.
func (s *ScoringService) WorkloadDistribution(ctx context.Context) ([]WorkloadShare, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for i := range members {
		total += members[i].Stats.TotalProjects
	}

	shares := make([]WorkloadShare, 0, len(members))
	for i := range members {
		share := WorkloadShare{
			MemberID: members[i].ID,
			Name:     members[i].Name,
			Projects: members[i].Stats.TotalProjects,
		}
		if total > 0 {
			share.Percentage = float64(members[i].Stats.TotalProjects) / float64(total) * 100
		}
		shares = append(shares, share)
	}
	return shares, nil
}

// IsWorkloadBalanced reports whether the widest percentage gap between any
// two members stays within the allowed spread. Empty rosters count as
// balanced. Diagnostic only, nothing blocks an unbalanced assignment.
func (s *ScoringService) IsWorkloadBalanced(ctx context.Context) (bool, error) {
	shares, err := s.WorkloadDistribution(ctx)
	if err != nil {
		return false, err
	}
	if len(shares) == 0 {
		return true, nil
	}

	minShare, maxShare := shares[0].Percentage, shares[0].Percentage
	for _, share := range shares[1:] {
		if share.Percentage < minShare {
			minShare = share.Percentage
		}
		if share.Percentage > maxShare {
			maxShare = share.Percentage
		}
	}
	return maxShare-minShare <= workloadBalanceSpread, nil
}

func meanContribution(members []models.Member) float64 {
	if len(members) == 0 {
		return 0
	}
	sum := 0.0
	for i := range members {
		sum += members[i].Stats.ContributionScore
	}
	return sum / float64(len(members))
}
