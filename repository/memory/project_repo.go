package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

type projectRepository struct {
	store *Store
}

// NewProjectRepository returns a ProjectRepository backed by store.
func NewProjectRepository(store *Store) repository.ProjectRepository {
	return &projectRepository{store: store}
}

func (r *projectRepository) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	project, ok := r.store.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return project.Clone(), nil
}

func (r *projectRepository) List(_ context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []domain.Project
	for _, project := range r.store.projects {
		if filter.Matches(project) {
			out = append(out, *project.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	from, to := paginate(len(out), filter.Limit, filter.Offset, filter.Unbounded)
	return out[from:to], nil
}

func (r *projectRepository) Create(_ context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil {
		return nil, domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.projects[project.ID]; exists {
		return nil, domain.NewError(domain.ErrCodeConflict, "project already exists")
	}
	stampCreated(&project.CreatedAt, &project.UpdatedAt)
	project.Version = 1
	r.store.projects[project.ID] = project.Clone()
	return project, nil
}

func (r *projectRepository) Update(_ context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.projects[project.ID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	if current.Version != project.Version {
		return domain.ErrStaleVersion
	}
	project.Version++
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = time.Now()
	}
	r.store.projects[project.ID] = project.Clone()
	return nil
}
