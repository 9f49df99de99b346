package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/pkg/config"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/token"
)

type fakeSettingsRepo struct {
	hash string
}

func (f *fakeSettingsRepo) LeaderTokenHash(ctx context.Context) (string, error) {
	return f.hash, nil
}

func (f *fakeSettingsRepo) SetLeaderTokenHash(ctx context.Context, hash string) error {
	f.hash = hash
	return nil
}

type fakeActivity struct {
	actions []string
}

func (f *fakeActivity) Record(ctx context.Context, action, memberID string, details map[string]string) {
	f.actions = append(f.actions, action)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SessionSecret:  "test_secret",
		SessionTTL:     time.Hour,
		LeaderMemberID: "member_001",
		LoginBaseURL:   "https://hq.example.com/login",
	}
}

func newAuthService(settings *fakeSettingsRepo, members *fakeMemberRepo, activity *fakeActivity) *AuthService {
	return NewAuthService(settings, members, activity, testAuthConfig(), nil)
}

func TestEnsureLeaderTokenMintOnce(t *testing.T) {
	settings := &fakeSettingsRepo{}
	svc := newAuthService(settings, &fakeMemberRepo{}, &fakeActivity{})
	ctx := context.Background()

	// Without forceCreate nothing is minted.
	result, err := svc.EnsureLeaderToken(ctx, false)
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Empty(t, settings.hash)

	result, err = svc.EnsureLeaderToken(ctx, true)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Len(t, result.Token, token.LeaderTokenLength)
	assert.Equal(t, token.Hash(result.Token), settings.hash)
	assert.Contains(t, result.Link, "?token=")

	// A second call returns only the stored hash, never a raw token.
	again, err := svc.EnsureLeaderToken(ctx, true)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Empty(t, again.Token)
	assert.Equal(t, settings.hash, again.Hash)
}

func TestLoginLeaderWithToken(t *testing.T) {
	settings := &fakeSettingsRepo{}
	members := &fakeMemberRepo{}
	activity := &fakeActivity{}
	svc := newAuthService(settings, members, activity)
	ctx := context.Background()

	minted, err := svc.EnsureLeaderToken(ctx, true)
	require.NoError(t, err)

	result, err := svc.LoginLeaderWithToken(ctx, minted.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.True(t, result.Session.IsLeader)
	assert.Equal(t, "member_001", result.Session.MemberID)
	assert.Equal(t, models.AuthTypeLeaderLink, result.Session.AuthType)
	assert.ElementsMatch(t, models.AllPermissions(), result.Session.Permissions)

	// First login auto-provisions the leader record.
	leader, err := members.Get(ctx, "member_001")
	require.NoError(t, err)
	assert.ElementsMatch(t, models.AllPermissions(), leader.Permissions)

	assert.Contains(t, activity.actions, models.ActionLeaderLogin)
}

func TestLoginLeaderRejections(t *testing.T) {
	settings := &fakeSettingsRepo{}
	svc := newAuthService(settings, &fakeMemberRepo{}, &fakeActivity{})
	ctx := context.Background()

	_, err := svc.LoginLeaderWithToken(ctx, "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrValidation.Code, errors.FromError(err).Code)

	_, err = svc.LoginLeaderWithToken(ctx, "anything")
	require.Error(t, err, "no token configured yet")

	minted, err := svc.EnsureLeaderToken(ctx, true)
	require.NoError(t, err)

	_, err = svc.LoginLeaderWithToken(ctx, minted.Token+"x")
	require.Error(t, err)
	assert.Equal(t, errors.ErrUnauthorized.Code, errors.FromError(err).Code)
}

func TestRotateLeaderTokenInvalidatesOld(t *testing.T) {
	settings := &fakeSettingsRepo{}
	activity := &fakeActivity{}
	svc := newAuthService(settings, &fakeMemberRepo{}, activity)
	ctx := context.Background()

	first, err := svc.EnsureLeaderToken(ctx, true)
	require.NoError(t, err)

	leaderSession := &models.Session{MemberID: "member_001", IsLeader: true}
	rotated, err := svc.RotateLeaderToken(ctx, leaderSession)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, rotated.Token)

	_, err = svc.LoginLeaderWithToken(ctx, first.Token)
	require.Error(t, err, "old token must be dead immediately")

	_, err = svc.LoginLeaderWithToken(ctx, rotated.Token)
	require.NoError(t, err)

	assert.Contains(t, activity.actions, models.ActionTokenRotate)
}

func TestRotateLeaderTokenLeaderOnly(t *testing.T) {
	svc := newAuthService(&fakeSettingsRepo{}, &fakeMemberRepo{}, &fakeActivity{})

	_, err := svc.RotateLeaderToken(context.Background(), &models.Session{MemberID: "member_002"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrLeaderOnly.Code, errors.FromError(err).Code)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := newAuthService(&fakeSettingsRepo{}, &fakeMemberRepo{}, &fakeActivity{})

	session := &models.Session{
		MemberID:    "member_002",
		Name:        "Mohammed",
		Permissions: []string{models.PermissionProjectsView},
		AuthType:    models.AuthTypeInviteLink,
	}
	issued, err := svc.IssueSession(session)
	require.NoError(t, err)

	parsed, err := svc.ValidateToken(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "member_002", parsed.MemberID)
	assert.False(t, parsed.IsLeader)
	assert.Equal(t, []string{models.PermissionProjectsView}, parsed.Permissions)

	_, err = svc.ValidateToken(issued.AccessToken + "tampered")
	require.Error(t, err)
}

func TestValidateTokenExpiry(t *testing.T) {
	svc := newAuthService(&fakeSettingsRepo{}, &fakeMemberRepo{}, &fakeActivity{})

	issued, err := svc.IssueSession(&models.Session{MemberID: "member_002"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(issued.AccessToken)
	require.Error(t, err)
}
