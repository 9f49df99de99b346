// Package store implements the local key-value persistence adapter. The
// local store is authoritative: every write lands here first, and remote
// replication is best-effort on top.
package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Keys used by the core collections.
const (
	KeyMembers         = "makers:members"
	KeyProjects        = "makers:projects"
	KeySettings        = "makers:settings"
	KeyInvites         = "makers:invites"
	KeyLeaderTokenHash = "makers:leader_token_hash"
	KeyActivityLog     = "makers:activity_log"
	KeyNotifications   = "makers:notifications"
)

// Store is the key-value persistence contract. Implementations degrade on
// failure: Get returns nil, Set/Remove/Clear return false, and the error is
// logged rather than propagated.
type Store interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, value []byte) bool
	Remove(ctx context.Context, key string) bool
	Clear(ctx context.Context) bool
}

// GetJSON reads and unmarshals a stored value into out. Returns false when
// the key is absent or the payload cannot be parsed.
func GetJSON(ctx context.Context, s Store, key string, out interface{}, logger *zap.Logger) bool {
	raw := s.Get(ctx, key)
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if logger != nil {
			logger.Warn("stored value is not valid JSON", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// SetJSON marshals and stores a value under key.
func SetJSON(ctx context.Context, s Store, key string, value interface{}, logger *zap.Logger) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		if logger != nil {
			logger.Warn("value cannot be encoded", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return s.Set(ctx, key, raw)
}
