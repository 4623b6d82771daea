package project

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase"
	"github.com/fastygo/taskpulse/usecase/activity"
)

// maxRecalcAttempts bounds retries when a concurrent writer bumps the project version.
const maxRecalcAttempts = 3

type UseCase struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	emitter  *activity.Emitter
	logger   *zap.Logger

	// StaleAfter enables the inactivity rule for on_hold; zero disables it.
	StaleAfter time.Duration
	Now        func() time.Time
}

func New(projects repository.ProjectRepository, tasks repository.TaskRepository, emitter *activity.Emitter, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		projects: projects,
		tasks:    tasks,
		emitter:  emitter,
		logger:   logger,
		Now:      time.Now,
	}
}

// Create stores a new project owned by the actor. Project managers creating a
// project become one of its managers.
func (uc *UseCase) Create(ctx context.Context, actor domain.Actor, project *domain.Project) (*domain.Project, usecase.Warnings, error) {
	if project == nil {
		return nil, nil, domain.ErrInvalidPayload
	}
	next := project.Clone()
	next.ID = ""
	next.OwnerID = actor.UserID
	if actor.Role == domain.RoleProjectManager {
		next.ProjectManagers = append(next.ProjectManagers, actor.UserID)
	}
	next.TaskCount, next.CompletedTaskCount, next.ProgressPercentage = 0, 0, 0
	next.AutoCalculatedStatus = domain.ProjectNotStarted
	next.Normalize()
	if err := next.Validate(); err != nil {
		return nil, nil, err
	}
	now := uc.Now()
	next.CreatedAt, next.UpdatedAt = now, now

	created, err := uc.projects.Create(ctx, next)
	if err != nil {
		return nil, nil, err
	}

	var warnings usecase.Warnings
	warnings.Add(uc.emitter.ProjectEvent(ctx, actor, domain.ActionProjectCreated, created))
	return created, warnings, nil
}

func (uc *UseCase) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Project, error) {
	return usecase.RequireProject(ctx, uc.projects, actor, id, domain.CapView)
}

func (uc *UseCase) List(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Project, error) {
	filter := usecase.ProjectScope(actor)
	filter.Limit = limit
	filter.Offset = offset
	return uc.projects.List(ctx, filter)
}

// Recalculate rebuilds the derived counters and auto status of a project from
// its current tasks. A project that no longer exists is skipped.
func (uc *UseCase) Recalculate(ctx context.Context, projectID string) (*domain.Project, error) {
	if projectID == "" {
		return nil, nil
	}
	var lastErr error
	for attempt := 0; attempt < maxRecalcAttempts; attempt++ {
		project, err := uc.projects.GetByID(ctx, projectID)
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				uc.logger.Debug("recalculate skipped, project missing", zap.String("project_id", projectID))
				return nil, nil
			}
			return nil, err
		}
		tasks, err := uc.tasks.ListByProject(ctx, projectID)
		if err != nil {
			return nil, err
		}

		now := uc.Now()
		project.Recalculate(tasks, now, uc.StaleAfter)
		project.UpdatedAt = now
		err = uc.projects.Update(ctx, project)
		if err == nil {
			return project, nil
		}
		if !domain.IsDomainError(err, domain.ErrCodeConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// RecalculateAll repairs every project and returns how many were updated.
func (uc *UseCase) RecalculateAll(ctx context.Context) (int, error) {
	projects, err := uc.projects.List(ctx, repository.ProjectFilter{Unbounded: true})
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, p := range projects {
		if _, err := uc.Recalculate(ctx, p.ID); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// UpdateStatusOverride sets or, with a nil status, clears the manual status.
// Only admins and listed managers of the project may do this. Counter
// refreshes racing with the override are absorbed by reloading and retrying.
func (uc *UseCase) UpdateStatusOverride(ctx context.Context, actor domain.Actor, id string, status *domain.ProjectStatus) (*domain.Project, usecase.Warnings, error) {
	if status != nil && !status.Valid() {
		return nil, nil, domain.Validationf("unknown project status %q", *status)
	}
	if !actor.IsElevated() {
		if _, err := usecase.RequireProject(ctx, uc.projects, actor, id, domain.CapView); err != nil {
			return nil, nil, err
		}
		return nil, nil, domain.ErrForbidden
	}

	var lastErr error
	for attempt := 0; attempt < maxRecalcAttempts; attempt++ {
		project, err := usecase.RequireProject(ctx, uc.projects, actor, id, domain.CapManage)
		if err != nil {
			return nil, nil, err
		}

		previous := project.StatusOverride
		next := project.Clone()
		if status != nil {
			s := *status
			next.StatusOverride = &s
		} else {
			next.StatusOverride = nil
		}
		next.UpdatedAt = uc.Now()
		err = uc.projects.Update(ctx, next)
		if err == nil {
			var warnings usecase.Warnings
			warnings.Add(uc.emitter.ProjectStatusOverridden(ctx, actor, next, previous))
			return next, warnings, nil
		}
		if !domain.IsDomainError(err, domain.ErrCodeConflict) {
			return nil, nil, err
		}
		uc.logger.Debug("status override retried after concurrent update",
			zap.String("project_id", id), zap.Int("attempt", attempt+1))
		lastErr = err
	}
	return nil, nil, lastErr
}
