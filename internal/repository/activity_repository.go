package repository

import (
	"context"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/store"
)

// ActivityRepository keeps the audit log as a bounded list, newest first.
type ActivityRepository struct {
	deps *Deps
}

// NewActivityRepository creates an audit log repository.
func NewActivityRepository(deps *Deps) *ActivityRepository {
	return &ActivityRepository{deps: deps}
}

// List returns up to limit entries, newest first. A non-positive limit
// returns the whole log.
func (r *ActivityRepository) List(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	var entries []models.ActivityEntry
	r.deps.load(ctx, store.KeyActivityLog, pathActivityLog, &entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Append prepends an entry, evicting the oldest once the cap is reached.
func (r *ActivityRepository) Append(ctx context.Context, entry models.ActivityEntry) error {
	entries, err := r.List(ctx, 0)
	if err != nil {
		return err
	}

	entries = append([]models.ActivityEntry{entry}, entries...)
	if len(entries) > models.MaxActivityEntries {
		entries = entries[:models.MaxActivityEntries]
	}

	return r.deps.save(ctx, store.KeyActivityLog, pathActivityLog, entries)
}

// Clear empties the audit log.
func (r *ActivityRepository) Clear(ctx context.Context) error {
	return r.deps.save(ctx, store.KeyActivityLog, pathActivityLog, []models.ActivityEntry{})
}
