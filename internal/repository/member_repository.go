package repository

import (
	"context"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/store"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
)

// MemberRepository stores the roster as a single ordered collection.
type MemberRepository struct {
	deps *Deps
}

// NewMemberRepository creates a roster repository.
func NewMemberRepository(deps *Deps) *MemberRepository {
	return &MemberRepository{deps: deps}
}

// List returns every member, normalized. An empty store yields an empty
// slice, never an error.
func (r *MemberRepository) List(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	r.deps.load(ctx, store.KeyMembers, pathMembers, &members)
	for i := range members {
		members[i].Normalize()
	}
	return members, nil
}

// Get returns one member by id.
func (r *MemberRepository) Get(ctx context.Context, id string) (*models.Member, error) {
	members, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].ID == id {
			return &members[i], nil
		}
	}
	return nil, errors.Clone(errors.ErrNotFound, "member not found")
}

// SaveAll replaces the roster.
func (r *MemberRepository) SaveAll(ctx context.Context, members []models.Member) error {
	if members == nil {
		members = []models.Member{}
	}
	return r.deps.save(ctx, store.KeyMembers, pathMembers, members)
}

// Insert appends a new member. The id must be unused.
func (r *MemberRepository) Insert(ctx context.Context, member models.Member) error {
	members, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range members {
		if members[i].ID == member.ID {
			return errors.Clone(errors.ErrConflict, "member id already in use")
		}
	}
	member.Normalize()
	return r.SaveAll(ctx, append(members, member))
}

// Update replaces the member with the same id.
func (r *MemberRepository) Update(ctx context.Context, member models.Member) error {
	members, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range members {
		if members[i].ID == member.ID {
			member.Normalize()
			members[i] = member
			return r.SaveAll(ctx, members)
		}
	}
	return errors.Clone(errors.ErrNotFound, "member not found")
}

// Upsert inserts or replaces by id. Used by invite redemption, which may
// provision a brand new identity or refresh an existing one.
func (r *MemberRepository) Upsert(ctx context.Context, member models.Member) error {
	members, err := r.List(ctx)
	if err != nil {
		return err
	}
	member.Normalize()
	for i := range members {
		if members[i].ID == member.ID {
			members[i] = member
			return r.SaveAll(ctx, members)
		}
	}
	return r.SaveAll(ctx, append(members, member))
}
