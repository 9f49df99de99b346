package repository

import (
	"context"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/store"
)

// SettingsRepository stores team settings and the leader token hash. Only
// the SHA-256 hash of the token crosses the wire; the raw token is never
// persisted anywhere.
type SettingsRepository struct {
	deps *Deps
}

// NewSettingsRepository creates a settings repository.
func NewSettingsRepository(deps *Deps) *SettingsRepository {
	return &SettingsRepository{deps: deps}
}

// Get returns the stored settings, falling back to defaults.
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if !r.deps.load(ctx, store.KeySettings, pathSettings, &settings) {
		return models.DefaultSettings(), nil
	}
	return &settings, nil
}

// Save replaces the settings.
func (r *SettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	return r.deps.save(ctx, store.KeySettings, pathSettings, settings)
}

// LeaderTokenHash returns the stored hash, empty when no token was minted.
// The local store is checked first, then the remote mirror, so a fresh
// deployment reuses the credential minted elsewhere instead of minting its
// own.
func (r *SettingsRepository) LeaderTokenHash(ctx context.Context) (string, error) {
	var hash string
	r.deps.load(ctx, store.KeyLeaderTokenHash, pathLeaderTokenHash, &hash)
	return hash, nil
}

// SetLeaderTokenHash replaces the hash locally and mirrors it remotely.
func (r *SettingsRepository) SetLeaderTokenHash(ctx context.Context, hash string) error {
	return r.deps.save(ctx, store.KeyLeaderTokenHash, pathLeaderTokenHash, hash)
}
