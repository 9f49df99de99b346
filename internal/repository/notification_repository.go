package repository

import (
	"context"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/store"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
)

// NotificationRepository keeps the recent notification feed, newest first,
// capped at MaxRecentNotifications.
type NotificationRepository struct {
	deps *Deps
}

// NewNotificationRepository creates a notification repository.
func NewNotificationRepository(deps *Deps) *NotificationRepository {
	return &NotificationRepository{deps: deps}
}

// List returns notifications visible to memberID: broadcasts plus entries
// targeted at that member. An empty memberID returns everything.
func (r *NotificationRepository) List(ctx context.Context, memberID string) ([]models.Notification, error) {
	var all []models.Notification
	r.deps.load(ctx, store.KeyNotifications, pathNotifications, &all)
	if memberID == "" {
		return all, nil
	}

	out := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if n.TargetMember == "" || n.TargetMember == memberID {
			out = append(out, n)
		}
	}
	return out, nil
}

// Push prepends a notification, evicting the oldest past the cap.
func (r *NotificationRepository) Push(ctx context.Context, n models.Notification) error {
	all, err := r.List(ctx, "")
	if err != nil {
		return err
	}

	all = append([]models.Notification{n}, all...)
	if len(all) > models.MaxRecentNotifications {
		all = all[:models.MaxRecentNotifications]
	}

	return r.deps.save(ctx, store.KeyNotifications, pathNotifications, all)
}

// MarkRead flags a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	all, err := r.List(ctx, "")
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id {
			all[i].Read = true
			return r.deps.save(ctx, store.KeyNotifications, pathNotifications, all)
		}
	}
	return errors.Clone(errors.ErrNotFound, "notification not found")
}
