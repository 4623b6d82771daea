package repository

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
)

type ProjectFilter struct {
	VisibleTo string
	TeamIDs   []string
	ManagedBy string
	Unbounded bool
	Limit     int
	Offset    int
}

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	// Update follows the same version check as TaskRepository.Update.
	Update(ctx context.Context, project *domain.Project) error
}

// Matches evaluates the filter against a single project in memory.
func (f ProjectFilter) Matches(p *domain.Project) bool {
	if f.VisibleTo == "" && len(f.TeamIDs) == 0 && f.ManagedBy == "" {
		return true
	}
	if f.ManagedBy != "" && contains(p.ProjectManagers, f.ManagedBy) {
		return true
	}
	if f.VisibleTo != "" && (p.OwnerID == f.VisibleTo || contains(p.Collaborators, f.VisibleTo) || contains(p.ProjectManagers, f.VisibleTo)) {
		return true
	}
	for _, team := range f.TeamIDs {
		if contains(p.AssignedTeams, team) {
			return true
		}
	}
	return false
}
