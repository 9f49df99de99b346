// Package repository exposes typed access to the collections kept in the
// local store. Every write commits locally first and is then handed to the
// replicator; reads fall through to the remote mirror only when the local
// store has nothing, caching the result back.
package repository

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/internal/mirror"
	"github.com/MASTFAX12/MAKERS/internal/store"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
)

// Mirror paths for each collection.
const (
	pathMembers         = "members"
	pathProjects        = "projects"
	pathSettings        = "settings"
	pathInvites         = "invites"
	pathActivityLog     = "activity_log"
	pathNotifications   = "notifications"
	pathLeaderTokenHash = "leader_token_hash"
)

// Deps bundles what every repository needs. Remote may be nil when the
// mirror is disabled.
type Deps struct {
	Store      store.Store
	Remote     mirror.Mirror
	Replicator *mirror.Replicator
	Logger     *zap.Logger
}

func (d *Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// load reads a collection, falling back to the remote mirror on a local
// miss. A remote hit is cached back into the local store.
func (d *Deps) load(ctx context.Context, key, path string, out interface{}) bool {
	if store.GetJSON(ctx, d.Store, key, out, d.logger()) {
		return true
	}
	if d.Remote == nil {
		return false
	}

	raw, err := d.Remote.Get(ctx, path)
	if err != nil {
		d.logger().Warn("mirror read-through failed", zap.String("path", path), zap.Error(err))
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		d.logger().Warn("mirrored value is not valid JSON", zap.String("path", path), zap.Error(err))
		return false
	}

	d.Store.Set(ctx, key, raw)
	return true
}

// save commits locally, then schedules replication. The local write is the
// one that can fail a request; replication is fire-and-forget.
func (d *Deps) save(ctx context.Context, key, path string, value interface{}) error {
	if !store.SetJSON(ctx, d.Store, key, value, d.logger()) {
		return errors.Wrap(nil, errors.ErrInternal.Code, errors.ErrInternal.Status, "failed to persist "+path)
	}
	if d.Replicator != nil {
		d.Replicator.Set(path, value)
	}
	return nil
}
