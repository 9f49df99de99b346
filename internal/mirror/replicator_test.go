package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct {
	mu       sync.Mutex
	values   map[string]interface{}
	deleted  []string
	fails    int
	failures int
	online   bool
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{values: make(map[string]interface{}), online: true}
}

func (f *fakeMirror) Set(ctx context.Context, path string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		f.failures++
		return errors.New("remote unavailable")
	}
	f.values[path] = value
	return nil
}

func (f *fakeMirror) Push(ctx context.Context, path string, value interface{}) (string, error) {
	return "", nil
}

func (f *fakeMirror) Update(ctx context.Context, path string, partial map[string]interface{}) error {
	return nil
}

func (f *fakeMirror) Get(ctx context.Context, path string) ([]byte, error) { return nil, nil }

func (f *fakeMirror) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeMirror) Listen(path string, cb Callback) error { return nil }
func (f *fakeMirror) Unlisten(path string)                  {}
func (f *fakeMirror) Online() bool                          { return f.online }
func (f *fakeMirror) Close() error                          { return nil }

func (f *fakeMirror) value(path string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[path]
}

func (f *fakeMirror) failuresSeen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures
}

func (f *fakeMirror) deletedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deleted))
	copy(out, f.deleted)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestReplicatorSetReachesMirror(t *testing.T) {
	fake := newFakeMirror()
	r := NewReplicator(fake, ReplicatorConfig{Workers: 1}, nil)
	r.Start(context.Background())
	defer r.Stop()

	r.Set("members", []string{"member_001"})

	waitFor(t, func() bool { return fake.value("members") != nil })
	assert.Equal(t, []string{"member_001"}, fake.value("members"))
}

func TestReplicatorDelete(t *testing.T) {
	fake := newFakeMirror()
	r := NewReplicator(fake, ReplicatorConfig{Workers: 1}, nil)
	r.Start(context.Background())
	defer r.Stop()

	r.Delete("invites/inv_001")

	waitFor(t, func() bool { return len(fake.deletedPaths()) == 1 })
	assert.Equal(t, "invites/inv_001", fake.deletedPaths()[0])
}

func TestReplicatorRetriesFailedWrites(t *testing.T) {
	fake := newFakeMirror()
	fake.fails = 2
	r := NewReplicator(fake, ReplicatorConfig{
		Workers:    1,
		MaxRetries: 3,
		RetryDelay: 10 * time.Millisecond,
	}, nil)
	r.Start(context.Background())
	defer r.Stop()

	r.Set("projects", []string{"proj_001"})

	waitFor(t, func() bool { return fake.value("projects") != nil })
}

func TestReplicatorAbandonsAfterMaxRetries(t *testing.T) {
	fake := newFakeMirror()
	fake.fails = 10
	r := NewReplicator(fake, ReplicatorConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
	}, nil)
	r.Start(context.Background())
	defer r.Stop()

	r.Set("projects", []string{"proj_001"})

	// One delivery plus two retries, then the change is dropped.
	waitFor(t, func() bool { return fake.failuresSeen() == 3 })
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, fake.value("projects"))
	assert.Equal(t, 3, fake.failuresSeen())
}

func TestReplicatorDisabledWithoutMirror(t *testing.T) {
	r := NewReplicator(nil, ReplicatorConfig{}, nil)

	require.False(t, r.Enabled())
	assert.False(t, r.Online())

	// No queue behind these, they must be safe no-ops.
	r.Start(context.Background())
	r.Set("members", nil)
	r.Delete("members")
	r.Stop()
}

func TestReplicatorOnlineFollowsMirror(t *testing.T) {
	fake := newFakeMirror()
	r := NewReplicator(fake, ReplicatorConfig{Workers: 1}, nil)

	assert.True(t, r.Online())
	fake.online = false
	assert.False(t, r.Online())
}
