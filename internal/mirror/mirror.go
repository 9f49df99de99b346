package mirror

import (
	"context"
	"errors"
)

// ErrOffline is returned when the remote mirror is not reachable.
var ErrOffline = errors.New("mirror offline")

// Callback receives the new value published at a path. A nil value means the
// path was deleted.
type Callback func(path string, value []byte)

// Mirror replicates the local dataset to a shared remote so other deployments
// see changes close to real time. The local store stays the source of truth,
// every mirror operation is best effort.
type Mirror interface {
	// Set stores value at path, replacing whatever was there.
	Set(ctx context.Context, path string, value interface{}) error

	// Push stores value under a generated child id of path and returns the id.
	Push(ctx context.Context, path string, value interface{}) (string, error)

	// Update merges partial into the object stored at path.
	Update(ctx context.Context, path string, partial map[string]interface{}) error

	// Get returns the raw JSON at path, or nil when the path holds nothing.
	Get(ctx context.Context, path string) ([]byte, error)

	// Delete removes the value at path.
	Delete(ctx context.Context, path string) error

	// Listen registers cb for changes published at path.
	Listen(path string, cb Callback) error

	// Unlisten removes every callback registered for path.
	Unlisten(path string)

	// Online reports whether the remote answered the most recent health probe.
	Online() bool

	// Close stops listeners and the connectivity probe.
	Close() error
}
