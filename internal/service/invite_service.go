package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/pkg/config"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/token"
)

// InviteStorage is the invite persistence contract.
type InviteStorage interface {
	List(ctx context.Context) ([]models.Invite, error)
	Get(ctx context.Context, id string) (*models.Invite, error)
	Insert(ctx context.Context, invite models.Invite) error
	Update(ctx context.Context, invite models.Invite) error
}

// SessionIssuer mints signed sessions. Satisfied by AuthService.
type SessionIssuer interface {
	IssueSession(session *models.Session) (*models.LoginResult, error)
	LeaderMemberID() string
}

// InviteService manages the single-use invite lifecycle:
// created, then exactly one of revoked, expired or used.
type InviteService struct {
	invites  InviteStorage
	members  AuthMemberRepository
	sessions SessionIssuer
	activity ActivityRecorder
	cfg      config.InviteConfig
	baseURL  string
	logger   *zap.Logger
	now      func() time.Time
}

// NewInviteService creates the invite service. baseURL is the public login
// page invite links point at.
func NewInviteService(
	invites InviteStorage,
	members AuthMemberRepository,
	sessions SessionIssuer,
	activity ActivityRecorder,
	cfg config.InviteConfig,
	baseURL string,
	logger *zap.Logger,
) *InviteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Hour
	}
	if cfg.MinTTL <= 0 {
		cfg.MinTTL = time.Minute
	}
	return &InviteService{
		invites:  invites,
		members:  members,
		sessions: sessions,
		activity: activity,
		cfg:      cfg,
		baseURL:  baseURL,
		logger:   logger,
		now:      time.Now,
	}
}

// Create issues a new invite. Leader only. Unknown permission keys in the
// request are dropped; an empty list grants view-only access.
func (s *InviteService) Create(ctx context.Context, session *models.Session, req *models.CreateInviteRequest) (*models.InviteResult, error) {
	if session == nil || !session.IsLeader {
		return nil, errors.ErrLeaderOnly
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.Clone(errors.ErrValidation, "invite name is required")
	}

	memberID := strings.TrimSpace(req.MemberID)
	if memberID == "" {
		memberID = "member_" + uuid.NewString()[:8]
	}
	if memberID == s.sessions.LeaderMemberID() {
		return nil, errors.Clone(errors.ErrValidation, "the leader identity cannot be invited")
	}

	permissions := models.NormalizePermissions(req.Permissions)
	if len(permissions) == 0 {
		permissions = models.DefaultMemberPermissions()
	}

	ttl := s.cfg.DefaultTTL
	if req.ExpiresInMinutes > 0 {
		ttl = time.Duration(req.ExpiresInMinutes) * time.Minute
	}
	if ttl < s.cfg.MinTTL {
		ttl = s.cfg.MinTTL
	}

	raw, degraded := token.Generate(token.InviteTokenLength)
	if degraded {
		s.logger.Warn("invite token generated without a secure randomness source")
	}

	now := s.now().UTC()
	invite := models.Invite{
		ID:          "inv_" + uuid.NewString(),
		Token:       raw,
		MemberID:    memberID,
		Name:        name,
		Role:        strings.TrimSpace(req.Role),
		Avatar:      strings.TrimSpace(req.Avatar),
		Permissions: permissions,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		CreatedBy:   session.MemberID,
	}

	if err := s.invites.Insert(ctx, invite); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActionInviteCreate, session.MemberID, map[string]string{
		"invite_id": invite.ID,
		"member_id": invite.MemberID,
		"name":      invite.Name,
	})

	return &models.InviteResult{Invite: &invite, Link: s.inviteLink(&invite)}, nil
}

// List returns every issued invite. Leader only.
func (s *InviteService) List(ctx context.Context, session *models.Session) ([]models.Invite, error) {
	if session == nil || !session.IsLeader {
		return nil, errors.ErrLeaderOnly
	}
	return s.invites.List(ctx)
}

// Revoke terminates a pending invite. Leader only; used invites cannot be
// revoked after the fact.
func (s *InviteService) Revoke(ctx context.Context, session *models.Session, id string) error {
	if session == nil || !session.IsLeader {
		return errors.ErrLeaderOnly
	}

	invite, err := s.invites.Get(ctx, id)
	if err != nil {
		return err
	}
	if invite.Used {
		return errors.Clone(errors.ErrConflict, "invite has already been used")
	}
	if invite.Revoked {
		return errors.Clone(errors.ErrConflict, "invite is already revoked")
	}

	now := s.now().UTC()
	invite.Revoked = true
	invite.RevokedAt = &now
	invite.RevokedBy = session.MemberID

	if err := s.invites.Update(ctx, *invite); err != nil {
		return err
	}

	s.activity.Record(ctx, models.ActionInviteRevoke, session.MemberID, map[string]string{
		"invite_id": invite.ID,
	})
	return nil
}

// Consume redeems an invite and signs the member in. Checks run in a fixed
// order and each failure carries its own reason; callers surface the
// message verbatim.
func (s *InviteService) Consume(ctx context.Context, req *models.ConsumeInviteRequest) (*models.LoginResult, error) {
	invite, err := s.invites.Get(ctx, req.ID)
	if err != nil {
		return nil, errors.Clone(errors.ErrInviteRejected, "invite not found")
	}
	if subtle.ConstantTimeCompare([]byte(invite.Token), []byte(req.Token)) != 1 {
		return nil, errors.Clone(errors.ErrInviteRejected, "invite token is incorrect")
	}
	if invite.Revoked {
		return nil, errors.Clone(errors.ErrInviteRejected, "invite has been revoked")
	}
	if invite.Used {
		return nil, errors.Clone(errors.ErrInviteRejected, "invite has already been used")
	}
	now := s.now().UTC()
	if invite.Expired(now) {
		return nil, errors.Clone(errors.ErrInviteRejected, "invite has expired")
	}
	if invite.MemberID == s.sessions.LeaderMemberID() {
		return nil, errors.Clone(errors.ErrInviteRejected, "invite cannot grant the leader identity")
	}

	member := s.materializeMember(ctx, invite)
	if err := s.members.Upsert(ctx, member); err != nil {
		return nil, err
	}

	invite.Used = true
	invite.UsedAt = &now
	invite.UsedByMemberID = member.ID
	if err := s.invites.Update(ctx, *invite); err != nil {
		return nil, err
	}

	session := &models.Session{
		MemberID:    member.ID,
		Name:        member.Name,
		Avatar:      member.Avatar,
		Role:        member.Role,
		Permissions: member.Permissions,
		IsLeader:    false,
		AuthType:    models.AuthTypeInviteLink,
		LoginTime:   now,
	}

	result, err := s.sessions.IssueSession(session)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActionInviteAccept, member.ID, map[string]string{
		"invite_id": invite.ID,
	})
	return result, nil
}

// materializeMember builds the roster record an invite provisions. When the
// identity already exists its stats carry over, so re-inviting a member
// refreshes name, role and permissions without resetting history.
func (s *InviteService) materializeMember(ctx context.Context, invite *models.Invite) models.Member {
	member := models.Member{
		ID:           invite.MemberID,
		Name:         invite.Name,
		Role:         invite.Role,
		Avatar:       invite.Avatar,
		Availability: models.AvailabilityAvailable,
		Permissions:  invite.Permissions,
		Stats:        models.NewMemberStats(nil),
	}
	if member.Avatar == "" && member.Name != "" {
		member.Avatar = string([]rune(member.Name)[:1])
	}

	if existing, err := s.members.Get(ctx, invite.MemberID); err == nil {
		member.Availability = existing.Availability
		member.Skills = existing.Skills
		member.Stats = existing.Stats
	}
	return member
}

func (s *InviteService) inviteLink(invite *models.Invite) string {
	if s.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s?invite=%s&token=%s", s.baseURL, url.QueryEscape(invite.ID), url.QueryEscape(invite.Token))
}
