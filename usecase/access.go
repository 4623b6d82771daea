package usecase

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

// TaskCapabilities resolves what actor may do with task. Managers of the owning
// project gain full control over its tasks.
func TaskCapabilities(ctx context.Context, projects repository.ProjectRepository, actor domain.Actor, task *domain.Task) (domain.Capability, error) {
	membership := task.Membership()
	if task.ProjectID != "" && projects != nil && !actor.IsAdmin() {
		project, err := projects.GetByID(ctx, task.ProjectID)
		switch {
		case err == nil:
			membership = membership.WithManagers(project.ProjectManagers)
		case domain.IsDomainError(err, domain.ErrCodeNotFound):
		default:
			return 0, err
		}
	}
	return domain.Capabilities(actor, membership), nil
}

// RequireTask loads a task and checks that actor holds want. Tasks the actor
// cannot see are reported as not found.
func RequireTask(ctx context.Context, tasks repository.TaskRepository, projects repository.ProjectRepository, actor domain.Actor, id string, want domain.Capability) (*domain.Task, error) {
	task, err := tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	caps, err := TaskCapabilities(ctx, projects, actor, task)
	if err != nil {
		return nil, err
	}
	if !caps.Has(domain.CapView) {
		return nil, domain.ErrTaskNotFound
	}
	if !caps.Has(want) {
		return nil, domain.ErrForbidden
	}
	return task, nil
}

// RequireProject is RequireTask for projects.
func RequireProject(ctx context.Context, projects repository.ProjectRepository, actor domain.Actor, id string, want domain.Capability) (*domain.Project, error) {
	project, err := projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	caps := domain.Capabilities(actor, project.Membership())
	if !caps.Has(domain.CapView) {
		return nil, domain.ErrProjectNotFound
	}
	if !caps.Has(want) {
		return nil, domain.ErrForbidden
	}
	return project, nil
}

// TaskScope returns the listing filter matching everything actor may see:
// admins see all tasks, everyone else their own, their teams' and those of
// projects they manage.
func TaskScope(ctx context.Context, projects repository.ProjectRepository, actor domain.Actor) (repository.TaskFilter, error) {
	if actor.IsAdmin() {
		return repository.TaskFilter{}, nil
	}
	filter := repository.TaskFilter{
		VisibleTo: actor.UserID,
		TeamIDs:   actor.TeamIDs,
	}
	managed, err := projects.List(ctx, repository.ProjectFilter{ManagedBy: actor.UserID, Unbounded: true})
	if err != nil {
		return repository.TaskFilter{}, err
	}
	for _, p := range managed {
		filter.ProjectIDs = append(filter.ProjectIDs, p.ID)
	}
	return filter, nil
}

// ProjectScope is TaskScope for projects.
func ProjectScope(actor domain.Actor) repository.ProjectFilter {
	if actor.IsAdmin() {
		return repository.ProjectFilter{}
	}
	return repository.ProjectFilter{
		VisibleTo: actor.UserID,
		TeamIDs:   actor.TeamIDs,
		ManagedBy: actor.UserID,
	}
}
