package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MASTFAX12/MAKERS/internal/mirror"
	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/store"
)

func testDeps() *Deps {
	return &Deps{Store: store.NewMemory()}
}

func TestMemberRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemberRepository(testDeps())

	members, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, repo.Insert(ctx, models.Member{ID: "member_001", Name: "Mustafa"}))
	require.NoError(t, repo.Insert(ctx, models.Member{ID: "member_002", Name: "Mohammed"}))

	err = repo.Insert(ctx, models.Member{ID: "member_001", Name: "Duplicate"})
	require.Error(t, err)

	got, err := repo.Get(ctx, "member_002")
	require.NoError(t, err)
	assert.Equal(t, "Mohammed", got.Name)
	assert.Equal(t, models.AvailabilityAvailable, got.Availability)

	got.Availability = models.AvailabilityBusy
	require.NoError(t, repo.Update(ctx, *got))

	updated, err := repo.Get(ctx, "member_002")
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityBusy, updated.Availability)

	_, err = repo.Get(ctx, "member_099")
	require.Error(t, err)
}

func TestMemberRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewMemberRepository(testDeps())

	require.NoError(t, repo.Upsert(ctx, models.Member{ID: "member_007", Name: "New"}))
	require.NoError(t, repo.Upsert(ctx, models.Member{ID: "member_007", Name: "Renamed"}))

	members, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Renamed", members[0].Name)
}

func TestProjectRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProjectRepository(testDeps())

	require.NoError(t, repo.Insert(ctx, models.Project{ID: "proj_001", Title: "Robot"}))
	require.NoError(t, repo.Insert(ctx, models.Project{ID: "proj_002", Title: "Site"}))

	require.NoError(t, repo.Delete(ctx, "proj_001"))

	projects, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "proj_002", projects[0].ID)

	require.Error(t, repo.Delete(ctx, "proj_001"))
}

func TestActivityRepositoryBounded(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(testDeps())

	for i := 0; i < models.MaxActivityEntries+25; i++ {
		entry := models.ActivityEntry{
			ID:        fmt.Sprintf("act_%04d", i),
			Timestamp: time.Now().UTC(),
			Action:    models.ActionProjectCreate,
		}
		require.NoError(t, repo.Append(ctx, entry))
	}

	entries, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, models.MaxActivityEntries)

	// Newest entry stays at the head, the oldest 25 are gone.
	assert.Equal(t, fmt.Sprintf("act_%04d", models.MaxActivityEntries+24), entries[0].ID)
	assert.Equal(t, "act_0025", entries[len(entries)-1].ID)
}

func TestActivityRepositoryListLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(testDeps())

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.Append(ctx, models.ActivityEntry{ID: fmt.Sprintf("act_%d", i)}))
	}

	entries, err := repo.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "act_9", entries[0].ID)
}

func TestSettingsRepositoryDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(testDeps())

	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MAK", settings.TeamAbbr)

	settings.TeamAbbr = "XYZ"
	require.NoError(t, repo.Save(ctx, settings))

	reread, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "XYZ", reread.TeamAbbr)
}

func TestLeaderTokenHashRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(testDeps())

	hash, err := repo.LeaderTokenHash(ctx)
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, repo.SetLeaderTokenHash(ctx, "abc123"))

	hash, err = repo.LeaderTokenHash(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", hash)
}

func TestNotificationRepositoryTargeting(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(testDeps())

	require.NoError(t, repo.Push(ctx, models.Notification{ID: "n1", Type: models.NotificationSystem}))
	require.NoError(t, repo.Push(ctx, models.Notification{ID: "n2", TargetMember: "member_002"}))
	require.NoError(t, repo.Push(ctx, models.Notification{ID: "n3", TargetMember: "member_003"}))

	visible, err := repo.List(ctx, "member_002")
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "n2", visible[0].ID)
	assert.Equal(t, "n1", visible[1].ID)
}

type stubRemote struct {
	values map[string][]byte
}

func (s *stubRemote) Set(ctx context.Context, path string, value interface{}) error { return nil }
func (s *stubRemote) Push(ctx context.Context, path string, value interface{}) (string, error) {
	return "", nil
}
func (s *stubRemote) Update(ctx context.Context, path string, partial map[string]interface{}) error {
	return nil
}
func (s *stubRemote) Get(ctx context.Context, path string) ([]byte, error) {
	return s.values[path], nil
}
func (s *stubRemote) Delete(ctx context.Context, path string) error        { return nil }
func (s *stubRemote) Listen(path string, cb mirror.Callback) error         { return nil }
func (s *stubRemote) Unlisten(path string)                                 {}
func (s *stubRemote) Online() bool                                         { return true }
func (s *stubRemote) Close() error                                         { return nil }

func TestLeaderTokenHashReadsThroughMirror(t *testing.T) {
	ctx := context.Background()

	raw, err := json.Marshal("deadbeef")
	require.NoError(t, err)

	local := store.NewMemory()
	deps := &Deps{Store: local, Remote: &stubRemote{values: map[string][]byte{pathLeaderTokenHash: raw}}}
	repo := NewSettingsRepository(deps)

	// A hash present only on the mirror must be picked up, not shadowed by
	// a fresh local mint.
	hash, err := repo.LeaderTokenHash(ctx)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", hash)

	// And cached back locally for the next read.
	assert.NotNil(t, local.Get(ctx, store.KeyLeaderTokenHash))
}

func TestReadThroughCachesMirrorHit(t *testing.T) {
	ctx := context.Background()

	remoteMembers := []models.Member{{ID: "member_001", Name: "Mustafa"}}
	raw, err := json.Marshal(remoteMembers)
	require.NoError(t, err)

	local := store.NewMemory()
	deps := &Deps{Store: local, Remote: &stubRemote{values: map[string][]byte{pathMembers: raw}}}
	repo := NewMemberRepository(deps)

	members, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Mustafa", members[0].Name)

	// The remote hit must be cached back into the local store.
	assert.NotNil(t, local.Get(ctx, store.KeyMembers))
}
