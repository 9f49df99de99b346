package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/pkg/config"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/token"
)

// AuthSettingsRepository is the leader credential storage contract.
type AuthSettingsRepository interface {
	LeaderTokenHash(ctx context.Context) (string, error)
	SetLeaderTokenHash(ctx context.Context, hash string) error
}

// AuthMemberRepository is the roster access the auth flow needs.
type AuthMemberRepository interface {
	Get(ctx context.Context, id string) (*models.Member, error)
	Upsert(ctx context.Context, member models.Member) error
}

// ActivityRecorder receives audit events.
type ActivityRecorder interface {
	Record(ctx context.Context, action, memberID string, details map[string]string)
}

// AuthService owns the passwordless credential model: a single hashed
// leader token plus JWT sessions minted from it or from invites.
type AuthService struct {
	settings AuthSettingsRepository
	members  AuthMemberRepository
	activity ActivityRecorder
	cfg      config.AuthConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates the auth service.
func NewAuthService(
	settings AuthSettingsRepository,
	members AuthMemberRepository,
	activity ActivityRecorder,
	cfg config.AuthConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LeaderMemberID == "" {
		cfg.LeaderMemberID = "member_001"
	}
	return &AuthService{
		settings: settings,
		members:  members,
		activity: activity,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// EnsureLeaderToken returns the current leader credential state. When no
// token exists and forceCreate is set, a fresh one is minted; the raw token
// appears in the result exactly once and only its hash is persisted.
func (s *AuthService) EnsureLeaderToken(ctx context.Context, forceCreate bool) (*models.LeaderTokenResult, error) {
	hash, err := s.settings.LeaderTokenHash(ctx)
	if err != nil {
		return nil, err
	}
	if hash != "" {
		return &models.LeaderTokenResult{Hash: hash, Created: false}, nil
	}
	if !forceCreate {
		return &models.LeaderTokenResult{Created: false}, nil
	}
	return s.mintLeaderToken(ctx)
}

// RotateLeaderToken overwrites the stored hash with a fresh one. The old
// token is unusable immediately, there is no grace period.
func (s *AuthService) RotateLeaderToken(ctx context.Context, session *models.Session) (*models.LeaderTokenResult, error) {
	if session == nil || !session.IsLeader {
		return nil, errors.ErrLeaderOnly
	}

	result, err := s.mintLeaderToken(ctx)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActionTokenRotate, session.MemberID, nil)
	return result, nil
}

func (s *AuthService) mintLeaderToken(ctx context.Context) (*models.LeaderTokenResult, error) {
	raw, degraded := token.Generate(token.LeaderTokenLength)
	if degraded {
		s.logger.Warn("leader token generated without a secure randomness source")
	}

	hash := token.Hash(raw)
	if err := s.settings.SetLeaderTokenHash(ctx, hash); err != nil {
		return nil, err
	}

	return &models.LeaderTokenResult{
		Token:   raw,
		Hash:    hash,
		Link:    s.loginLink(raw),
		Created: true,
	}, nil
}

// LoginLeaderWithToken exchanges a raw leader token for a leader session.
// The leader member record is auto-provisioned on first login.
func (s *AuthService) LoginLeaderWithToken(ctx context.Context, raw string) (*models.LoginResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.Clone(errors.ErrValidation, "token is required")
	}

	hash, err := s.settings.LeaderTokenHash(ctx)
	if err != nil {
		return nil, err
	}
	if hash == "" {
		return nil, errors.Clone(errors.ErrUnauthorized, "no leader token has been configured")
	}
	if !token.HashEqual(raw, hash) {
		return nil, errors.Clone(errors.ErrUnauthorized, "invalid leader token")
	}

	leader, err := s.ensureLeaderMember(ctx)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		MemberID:    leader.ID,
		Name:        leader.Name,
		Avatar:      leader.Avatar,
		Role:        leader.Role,
		Permissions: models.AllPermissions(),
		IsLeader:    true,
		AuthType:    models.AuthTypeLeaderLink,
		LoginTime:   s.now().UTC(),
	}

	result, err := s.IssueSession(session)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActionLeaderLogin, leader.ID, nil)
	return result, nil
}

// Logout only audits; JWTs stay valid until expiry, the client discards
// its copy.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) {
	if session == nil {
		return
	}
	s.activity.Record(ctx, models.ActionLogout, session.MemberID, nil)
}

// IssueSession signs a JWT carrying the session. Permissions are baked in
// at issue time and never refreshed from the member record.
func (s *AuthService) IssueSession(session *models.Session) (*models.LoginResult, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.cfg.SessionTTL)

	claims := &models.SessionClaims{
		MemberID:    session.MemberID,
		Name:        session.Name,
		Avatar:      session.Avatar,
		Role:        session.Role,
		Permissions: session.Permissions,
		IsLeader:    session.IsLeader,
		AuthType:    session.AuthType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   session.MemberID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SessionSecret))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Status, "failed to sign session token")
	}

	return &models.LoginResult{
		AccessToken: signed,
		ExpiresIn:   int64(s.cfg.SessionTTL.Seconds()),
		Session:     session,
	}, nil
}

// ValidateToken parses and verifies a session JWT.
func (s *AuthService) ValidateToken(tokenString string) (*models.Session, error) {
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrInvalidToken
		}
		return []byte(s.cfg.SessionSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, errors.ErrInvalidToken
	}
	return claims.Session(), nil
}

// LeaderMemberID exposes the reserved leader identity.
func (s *AuthService) LeaderMemberID() string {
	return s.cfg.LeaderMemberID
}

func (s *AuthService) ensureLeaderMember(ctx context.Context) (*models.Member, error) {
	leader, err := s.members.Get(ctx, s.cfg.LeaderMemberID)
	if err == nil {
		return leader, nil
	}

	fresh := models.Member{
		ID:           s.cfg.LeaderMemberID,
		Name:         "Leader",
		Role:         "Leader",
		Avatar:       "L",
		Availability: models.AvailabilityAvailable,
		Permissions:  models.AllPermissions(),
		Stats:        models.NewMemberStats(nil),
	}
	if err := s.members.Upsert(ctx, fresh); err != nil {
		return nil, err
	}
	return &fresh, nil
}

func (s *AuthService) loginLink(raw string) string {
	if s.cfg.LoginBaseURL == "" {
		return ""
	}
	return s.cfg.LoginBaseURL + "?token=" + url.QueryEscape(raw)
}
