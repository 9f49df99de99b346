package repository

import (
	"context"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/internal/store"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
)

// ProjectRepository stores the project collection.
type ProjectRepository struct {
	deps *Deps
}

// NewProjectRepository creates a project repository.
func NewProjectRepository(deps *Deps) *ProjectRepository {
	return &ProjectRepository{deps: deps}
}

// List returns every project, normalized.
func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	r.deps.load(ctx, store.KeyProjects, pathProjects, &projects)
	for i := range projects {
		projects[i].Normalize()
	}
	return projects, nil
}

// Get returns one project by id.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	projects, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, errors.Clone(errors.ErrNotFound, "project not found")
}

// SaveAll replaces the collection.
func (r *ProjectRepository) SaveAll(ctx context.Context, projects []models.Project) error {
	if projects == nil {
		projects = []models.Project{}
	}
	return r.deps.save(ctx, store.KeyProjects, pathProjects, projects)
}

// Insert appends a new project.
func (r *ProjectRepository) Insert(ctx context.Context, project models.Project) error {
	projects, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range projects {
		if projects[i].ID == project.ID {
			return errors.Clone(errors.ErrConflict, "project id already in use")
		}
	}
	project.Normalize()
	return r.SaveAll(ctx, append(projects, project))
}

// Update replaces the project with the same id.
func (r *ProjectRepository) Update(ctx context.Context, project models.Project) error {
	projects, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range projects {
		if projects[i].ID == project.ID {
			project.Normalize()
			projects[i] = project
			return r.SaveAll(ctx, projects)
		}
	}
	return errors.Clone(errors.ErrNotFound, "project not found")
}

// Delete removes a project by id.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	projects, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range projects {
		if projects[i].ID == id {
			return r.SaveAll(ctx, append(projects[:i], projects[i+1:]...))
		}
	}
	return errors.Clone(errors.ErrNotFound, "project not found")
}
