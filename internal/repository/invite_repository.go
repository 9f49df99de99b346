package repository

import (
	"context"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/store"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
)

// InviteRepository stores issued invites. Invites are kept after use and
// revocation so the leader can audit them.
type InviteRepository struct {
	deps *Deps
}

// NewInviteRepository creates an invite repository.
func NewInviteRepository(deps *Deps) *InviteRepository {
	return &InviteRepository{deps: deps}
}

// List returns every invite, newest first.
func (r *InviteRepository) List(ctx context.Context) ([]models.Invite, error) {
	var invites []models.Invite
	r.deps.load(ctx, store.KeyInvites, pathInvites, &invites)
	return invites, nil
}

// Get returns one invite by id.
func (r *InviteRepository) Get(ctx context.Context, id string) (*models.Invite, error) {
	invites, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range invites {
		if invites[i].ID == id {
			return &invites[i], nil
		}
	}
	return nil, errors.Clone(errors.ErrNotFound, "invite not found")
}

// Insert prepends a new invite.
func (r *InviteRepository) Insert(ctx context.Context, invite models.Invite) error {
	invites, err := r.List(ctx)
	if err != nil {
		return err
	}
	invites = append([]models.Invite{invite}, invites...)
	return r.deps.save(ctx, store.KeyInvites, pathInvites, invites)
}

// Update replaces the invite with the same id.
func (r *InviteRepository) Update(ctx context.Context, invite models.Invite) error {
	invites, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range invites {
		if invites[i].ID == invite.ID {
			invites[i] = invite
			return r.deps.save(ctx, store.KeyInvites, pathInvites, invites)
		}
	}
	return errors.Clone(errors.ErrNotFound, "invite not found")
}
