package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/pkg/ai"
)

// TeamSuggestion is a ranked roster with the strategy that produced it.
// Source is "ai" when the language model picked the team and "scoring" when
// the deterministic ranking was used.
type TeamSuggestion struct {
	Members []RankedMember `json:"members"`
	Source  string         `json:"source"`
}

// AIService layers generative suggestions over the deterministic scoring
// engine. Every AI failure falls back to the engine's own ranking, the
// feature degrades, it never breaks.
type AIService struct {
	client  *ai.Client
	scoring *ScoringService
	members ScoringMemberRepository
	logger  *zap.Logger
}

// NewAIService creates the AI helper service. client may be nil when the
// collaborator is disabled; everything then runs on the scoring engine.
func NewAIService(client *ai.Client, scoring *ScoringService, members ScoringMemberRepository, logger *zap.Logger) *AIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIService{client: client, scoring: scoring, members: members, logger: logger}
}

// Enabled reports whether the generative collaborator is configured.
func (s *AIService) Enabled() bool {
	return s.client != nil
}

// SuggestTeam asks the model to pick a team for the subject, then reorders
// the deterministic ranking to honor the pick. Any failure, rate limit,
// missing client, unparseable answer, falls back to plain scoring.
func (s *AIService) SuggestTeam(ctx context.Context, subjectID string, teamSize int) (*TeamSuggestion, error) {
	ranked, err := s.scoring.SuggestedTeam(ctx, subjectID, teamSize)
	if err != nil {
		return nil, err
	}

	if s.client == nil || !s.client.Available() || len(ranked) == 0 {
		return &TeamSuggestion{Members: ranked, Source: "scoring"}, nil
	}

	var roster strings.Builder
	for _, r := range ranked {
		fmt.Fprintf(&roster, "- id=%s name=%s availability=%s active_projects=%d expertise=%.1f\n",
			r.Member.ID, r.Member.Name, r.Member.Availability,
			r.Member.Stats.ActiveProjects, r.Member.Stats.ExpertiseFor(subjectID))
	}

	prompt := fmt.Sprintf(
		"Pick the best team of %d members for a %q project from this roster:\n%s\nReturn a JSON array of member ids, best first.",
		teamSize, subjectID, roster.String())

	var picked []string
	if err := s.client.GenerateJSON(ctx, prompt, ai.Options{Temperature: 0.3}, &picked); err != nil {
		s.logger.Warn("ai team suggestion failed, using scoring ranking", zap.Error(err))
		return &TeamSuggestion{Members: ranked, Source: "scoring"}, nil
	}

	reordered, ok := applyPick(ranked, picked, teamSize)
	if !ok {
		s.logger.Warn("ai returned unknown member ids, using scoring ranking")
		return &TeamSuggestion{Members: ranked, Source: "scoring"}, nil
	}
	return &TeamSuggestion{Members: reordered, Source: "ai"}, nil
}

// DescribeProject drafts a short project description. Without the
// collaborator a plain deterministic template is returned.
func (s *AIService) DescribeProject(ctx context.Context, title, subjectID string) string {
	fallback := fmt.Sprintf("%s: a %s project for the team. Define goals, split the work and track progress here.", title, subjectID)

	if s.client == nil || !s.client.Available() {
		return fallback
	}

	prompt := fmt.Sprintf("Write a two-sentence project description for a team project titled %q in the subject %q.", title, subjectID)
	text, err := s.client.Generate(ctx, prompt, ai.Options{Temperature: 0.7, MaxTokens: 200})
	if err != nil {
		s.logger.Warn("ai description failed, using template", zap.Error(err))
		return fallback
	}
	return strings.TrimSpace(text)
}

// Status reports collaborator availability for the dashboard.
func (s *AIService) Status() map[string]interface{} {
	if s.client == nil {
		return map[string]interface{}{"enabled": false}
	}
	return map[string]interface{}{
		"enabled":            true,
		"available":          s.client.Available(),
		"remaining_requests": s.client.RemainingRequests(),
	}
}

// applyPick moves the model's chosen ids to the front, preserving the
// deterministic order within both the picked and unpicked groups, and
// reassigns the suggested flags. Returns false when any id is unknown.
func applyPick(ranked []RankedMember, picked []string, teamSize int) ([]RankedMember, bool) {
	index := make(map[string]int, len(ranked))
	for i, r := range ranked {
		index[r.Member.ID] = i
	}

	chosen := make(map[string]struct{}, len(picked))
	out := make([]RankedMember, 0, len(ranked))
	for _, id := range picked {
		i, ok := index[id]
		if !ok {
			return nil, false
		}
		if _, dup := chosen[id]; dup {
			continue
		}
		chosen[id] = struct{}{}
		out = append(out, ranked[i])
	}
	for _, r := range ranked {
		if _, ok := chosen[r.Member.ID]; !ok {
			out = append(out, r)
		}
	}

	for i := range out {
		out[i].Suggested = i < teamSize && i < len(out)
	}
	return out, true
}
