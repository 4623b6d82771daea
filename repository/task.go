package repository

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
)

// TaskFilter narrows task listings. Visibility fields are OR-ed together; when all
// of them are empty the listing is unscoped.
type TaskFilter struct {
	VisibleTo  string
	TeamIDs    []string
	ProjectIDs []string
	ProjectID  string
	Status     domain.TaskStatus
	Priority   domain.Priority
	HasActual  bool
	Unbounded  bool
	Limit      int
	Offset     int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Update persists task only if the stored version equals task.Version and
	// bumps the version on success. A mismatch yields domain.ErrStaleVersion.
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}

// Scoped reports whether the filter restricts visibility.
func (f TaskFilter) Scoped() bool {
	return f.VisibleTo != "" || len(f.TeamIDs) > 0 || len(f.ProjectIDs) > 0
}

// Matches evaluates the filter against a single task in memory.
func (f TaskFilter) Matches(t *domain.Task) bool {
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.HasActual && t.ActualDuration == nil {
		return false
	}
	if !f.Scoped() {
		return true
	}
	if f.VisibleTo != "" && (contains(t.Owners, f.VisibleTo) || contains(t.AssignedUsers, f.VisibleTo) || contains(t.Collaborators, f.VisibleTo)) {
		return true
	}
	for _, team := range f.TeamIDs {
		if contains(t.AssignedTeams, team) {
			return true
		}
	}
	return t.ProjectID != "" && contains(f.ProjectIDs, t.ProjectID)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
