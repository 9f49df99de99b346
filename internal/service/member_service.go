package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
)

// MemberRepositoryFull is the roster contract the member service needs.
type MemberRepositoryFull interface {
	List(ctx context.Context) ([]models.Member, error)
	Get(ctx context.Context, id string) (*models.Member, error)
	Update(ctx context.Context, member models.Member) error
}

// MemberService manages the roster. Members are never hard-deleted, the
// roster doubles as audit history; access is removed by revoking permissions
// or rotating credentials instead.
type MemberService struct {
	members  MemberRepositoryFull
	activity ActivityRecorder
	validate *validator.Validate
	logger   *zap.Logger
}

// NewMemberService creates a member service.
func NewMemberService(members MemberRepositoryFull, activity ActivityRecorder, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{
		members:  members,
		activity: activity,
		validate: validator.New(),
		logger:   logger,
	}
}

// List returns the whole roster.
func (s *MemberService) List(ctx context.Context) ([]models.Member, error) {
	return s.members.List(ctx)
}

// Get returns one member.
func (s *MemberService) Get(ctx context.Context, id string) (*models.Member, error) {
	return s.members.Get(ctx, id)
}

// Update edits a member record. The leader can edit anyone; everyone else
// only themselves, and never their own permission list.
func (s *MemberService) Update(ctx context.Context, session *models.Session, id string, req *models.UpdateMemberRequest) (*models.Member, error) {
	if session == nil {
		return nil, errors.ErrUnauthorized
	}
	if !session.IsLeader && session.MemberID != id {
		return nil, errors.Clone(errors.ErrForbidden, "members can only edit their own profile")
	}
	if req.Permissions != nil && !session.IsLeader {
		return nil, errors.Clone(errors.ErrLeaderOnly, "only the leader can change permissions")
	}

	member, err := s.members.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Avatar != nil {
		member.Avatar = *req.Avatar
	}
	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.Skills != nil {
		member.Skills = *req.Skills
	}
	if req.Permissions != nil {
		if id == session.MemberID && session.IsLeader {
			return nil, errors.Clone(errors.ErrValidation, "the leader's permissions cannot be reduced")
		}
		member.Permissions = models.NormalizePermissions(*req.Permissions)
	}

	if err := s.members.Update(ctx, *member); err != nil {
		return nil, err
	}
	return member, nil
}

// SetAvailability flips a member's capacity flag. Self-service, or leader
// on behalf of anyone.
func (s *MemberService) SetAvailability(ctx context.Context, session *models.Session, id string, req *models.SetAvailabilityRequest) (*models.Member, error) {
	if session == nil {
		return nil, errors.ErrUnauthorized
	}
	if !session.IsLeader && session.MemberID != id {
		return nil, errors.Clone(errors.ErrForbidden, "members can only change their own availability")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "invalid availability")
	}

	member, err := s.members.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	member.Availability = req.Availability
	if err := s.members.Update(ctx, *member); err != nil {
		return nil, err
	}
	return member, nil
}

// Totals aggregates the roster counters for the dashboard.
func (s *MemberService) Totals(ctx context.Context) (*models.RosterTotals, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, err
	}

	totals := &models.RosterTotals{TotalMembers: len(members)}
	for i := range members {
		totals.TotalProjects += members[i].Stats.TotalProjects
		totals.CompletedProjects += members[i].Stats.CompletedProjects
		totals.ActiveProjects += members[i].Stats.ActiveProjects
	}
	return totals, nil
}
