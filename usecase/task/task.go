package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/logger"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase"
	"github.com/fastygo/taskpulse/usecase/activity"
)

// maxUpdateAttempts bounds reload-and-reapply cycles when a concurrent writer
// (usually the timer) bumps the task version underneath an update.
const maxUpdateAttempts = 3

// Patch carries the fields a client may change. Nil fields are left alone.
// Timer fields are absent on purpose: only the timer moves them.
type Patch struct {
	Title             *string
	Description       *string
	Status            *domain.TaskStatus
	Priority          *domain.Priority
	ProjectID         *string
	AssignedUsers     *[]string
	Collaborators     *[]string
	AssignedTeams     *[]string
	Tags              *[]string
	EstimatedDuration *int
	ActualDuration    *int
	DueDate           *time.Time
	ClearDueDate      bool
}

// Query narrows a task listing inside the actor's visibility.
type Query struct {
	ProjectID string
	Status    domain.TaskStatus
	Priority  domain.Priority
	Limit     int
	Offset    int
}

type UseCase struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	progress usecase.ProgressEngine
	emitter  *activity.Emitter
	logger   *zap.Logger

	Now func() time.Time
}

func New(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	progress usecase.ProgressEngine,
	emitter *activity.Emitter,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		projects: projects,
		progress: progress,
		emitter:  emitter,
		logger:   logger,
		Now:      time.Now,
	}
}

func (uc *UseCase) List(ctx context.Context, actor domain.Actor, q Query) ([]domain.Task, error) {
	filter, err := usecase.TaskScope(ctx, uc.projects, actor)
	if err != nil {
		return nil, err
	}
	filter.ProjectID = q.ProjectID
	filter.Status = q.Status
	filter.Priority = q.Priority
	filter.Limit = q.Limit
	filter.Offset = q.Offset
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Task, error) {
	return usecase.RequireTask(ctx, uc.tasks, uc.projects, actor, id, domain.CapView)
}

// Create stores a new task with the actor as owner. Timer state always starts empty.
func (uc *UseCase) Create(ctx context.Context, actor domain.Actor, input *domain.Task) (*domain.Task, usecase.Warnings, error) {
	if input == nil {
		return nil, nil, domain.ErrInvalidPayload
	}
	now := uc.Now()

	next := input.Clone()
	next.ID = ""
	next.Owners = append([]string{actor.UserID}, next.Owners...)
	next.IsTimerRunning = false
	next.TimerElapsedSeconds = 0
	next.TimerStartedAt = nil
	next.TimerSessions = nil
	next.StartTime, next.EndTime = nil, nil
	next.OverdueNotified = false

	status := next.Status
	next.Status = domain.TaskTodo
	next.CompletedAt = nil
	if status != "" {
		if !status.Valid() {
			return nil, nil, domain.Validationf("unknown task status %q", status)
		}
		next.SetStatus(status, now)
	}
	next.Normalize()
	for i := range next.Todos {
		prepareSubtask(&next.Todos[i], now)
	}
	if err := next.Validate(); err != nil {
		return nil, nil, err
	}
	if err := uc.attachProject(ctx, actor, next); err != nil {
		return nil, nil, err
	}
	next.CreatedAt, next.UpdatedAt = now, now

	created, err := uc.tasks.Create(ctx, next)
	if err != nil {
		return nil, nil, err
	}

	var warnings usecase.Warnings
	uc.refreshProjects(ctx, &warnings, created.ProjectID)
	warnings.Add(uc.emitter.TaskEvent(ctx, actor, domain.ActionTaskCreated, created, nil))
	warnings.Add(uc.emitter.TaskAssigned(ctx, actor, created, created.AssignedUsers))
	uc.logWarnings(ctx, created.ID, warnings)
	return created, warnings, nil
}

// Update applies patch. Status changes go through the completion rule,
// both the old and the new project are refreshed and the matching events fire.
func (uc *UseCase) Update(ctx context.Context, actor domain.Actor, id string, patch Patch) (*domain.Task, usecase.Warnings, error) {
	var (
		current, next *domain.Task
		err           error
	)
	for attempt := 0; ; attempt++ {
		current, err = usecase.RequireTask(ctx, uc.tasks, uc.projects, actor, id, domain.CapEdit)
		if err != nil {
			return nil, nil, err
		}
		now := uc.Now()
		next = current.Clone()
		if err := uc.applyPatch(ctx, actor, next, patch, now); err != nil {
			return nil, nil, err
		}
		next.UpdatedAt = now

		err = uc.tasks.Update(ctx, next)
		if err == nil {
			break
		}
		if !domain.IsDomainError(err, domain.ErrCodeConflict) || attempt+1 >= maxUpdateAttempts {
			return nil, nil, err
		}
	}

	var warnings usecase.Warnings
	uc.refreshProjects(ctx, &warnings, current.ProjectID, next.ProjectID)
	warnings.Add(uc.emitter.TaskEvent(ctx, actor, domain.ActionTaskUpdated, next, nil))
	if next.Status != current.Status {
		warnings.Add(uc.emitter.TaskStatusChanged(ctx, actor, next, current.Status, next.Status))
	}
	warnings.Add(uc.emitter.TaskAssigned(ctx, actor, next, domain.Difference(next.AssignedUsers, current.AssignedUsers)))
	if next.OverdueNotified && !current.OverdueNotified {
		warnings.Add(uc.emitter.TaskOverdue(ctx, actor, next))
	}
	uc.logWarnings(ctx, next.ID, warnings)
	return next, warnings, nil
}

// Delete removes a task. Owners and actors with manage rights may delete.
func (uc *UseCase) Delete(ctx context.Context, actor domain.Actor, id string) (usecase.Warnings, error) {
	task, err := usecase.RequireTask(ctx, uc.tasks, uc.projects, actor, id, domain.CapView)
	if err != nil {
		return nil, err
	}
	caps, err := usecase.TaskCapabilities(ctx, uc.projects, actor, task)
	if err != nil {
		return nil, err
	}
	if !caps.Has(domain.CapManage) && !isOwner(task, actor.UserID) {
		return nil, domain.ErrForbidden
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return nil, err
	}

	var warnings usecase.Warnings
	uc.refreshProjects(ctx, &warnings, task.ProjectID)
	warnings.Add(uc.emitter.TaskEvent(ctx, actor, domain.ActionTaskDeleted, task, nil))
	uc.logWarnings(ctx, id, warnings)
	return warnings, nil
}

// AddSubtask appends a checklist item.
func (uc *UseCase) AddSubtask(ctx context.Context, actor domain.Actor, taskID string, input domain.Subtask) (*domain.Task, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, domain.Validationf("subtask text is required")
	}
	if input.EstimatedDuration != nil && *input.EstimatedDuration < 0 {
		return nil, domain.Validationf("subtask estimated_duration must not be negative")
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return nil, domain.Validationf("unknown subtask priority %q", input.Priority)
	}
	return uc.modify(ctx, actor, taskID, func(t *domain.Task, now time.Time) error {
		st := input
		st.ID = ""
		st.Comments = nil
		prepareSubtask(&st, now)
		t.Todos = append(t.Todos, st)
		return nil
	})
}

// SetSubtaskCompleted toggles a checklist item, stamping or clearing its completion time.
func (uc *UseCase) SetSubtaskCompleted(ctx context.Context, actor domain.Actor, taskID, subtaskID string, completed bool) (*domain.Task, error) {
	return uc.modify(ctx, actor, taskID, func(t *domain.Task, now time.Time) error {
		i := t.FindSubtask(subtaskID)
		if i < 0 {
			return domain.ErrSubtaskNotFound
		}
		st := &t.Todos[i]
		if st.Completed == completed {
			return nil
		}
		st.Completed = completed
		if completed {
			stamp := now
			st.CompletedAt = &stamp
		} else {
			st.CompletedAt = nil
		}
		return nil
	})
}

// AddSubtaskComment attaches a comment by the actor to a checklist item.
func (uc *UseCase) AddSubtaskComment(ctx context.Context, actor domain.Actor, taskID, subtaskID, text string) (*domain.Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.Validationf("comment text is required")
	}
	return uc.modify(ctx, actor, taskID, func(t *domain.Task, now time.Time) error {
		i := t.FindSubtask(subtaskID)
		if i < 0 {
			return domain.ErrSubtaskNotFound
		}
		t.Todos[i].Comments = append(t.Todos[i].Comments, domain.Comment{
			ID:        uuid.NewString(),
			UserID:    actor.UserID,
			Text:      text,
			CreatedAt: now,
		})
		return nil
	})
}

// modify runs fn on a fresh copy of the task and saves it, retrying on version conflicts.
func (uc *UseCase) modify(ctx context.Context, actor domain.Actor, taskID string, fn func(t *domain.Task, now time.Time) error) (*domain.Task, error) {
	for attempt := 0; ; attempt++ {
		current, err := usecase.RequireTask(ctx, uc.tasks, uc.projects, actor, taskID, domain.CapEdit)
		if err != nil {
			return nil, err
		}
		now := uc.Now()
		next := current.Clone()
		if err := fn(next, now); err != nil {
			return nil, err
		}
		next.UpdatedAt = now
		err = uc.tasks.Update(ctx, next)
		if err == nil {
			return next, nil
		}
		if !domain.IsDomainError(err, domain.ErrCodeConflict) || attempt+1 >= maxUpdateAttempts {
			return nil, err
		}
	}
}

func (uc *UseCase) applyPatch(ctx context.Context, actor domain.Actor, t *domain.Task, p Patch, now time.Time) error {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedUsers != nil {
		t.AssignedUsers = *p.AssignedUsers
	}
	if p.Collaborators != nil {
		t.Collaborators = *p.Collaborators
	}
	if p.AssignedTeams != nil {
		t.AssignedTeams = *p.AssignedTeams
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	if p.EstimatedDuration != nil {
		v := *p.EstimatedDuration
		t.EstimatedDuration = &v
	}
	if p.ActualDuration != nil {
		v := *p.ActualDuration
		t.ActualDuration = &v
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
		t.OverdueNotified = false
	case p.DueDate != nil:
		due := *p.DueDate
		t.DueDate = &due
		if due.After(now) {
			t.OverdueNotified = false
		}
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return domain.Validationf("unknown task status %q", *p.Status)
		}
		t.SetStatus(*p.Status, now)
	}
	if p.ProjectID != nil && *p.ProjectID != t.ProjectID {
		t.ProjectID = *p.ProjectID
		t.ProjectName = ""
		if err := uc.attachProject(ctx, actor, t); err != nil {
			return err
		}
	}

	t.Normalize()
	if err := t.Validate(); err != nil {
		return err
	}
	if t.IsOverdue(now) && !t.OverdueNotified {
		t.OverdueNotified = true
	}
	return nil
}

// attachProject checks the actor may place work in the project and copies its name.
func (uc *UseCase) attachProject(ctx context.Context, actor domain.Actor, t *domain.Task) error {
	if t.ProjectID == "" {
		t.ProjectName = ""
		return nil
	}
	project, err := usecase.RequireProject(ctx, uc.projects, actor, t.ProjectID, domain.CapEdit)
	if err != nil {
		return err
	}
	t.ProjectName = project.Name
	return nil
}

func (uc *UseCase) refreshProjects(ctx context.Context, warnings *usecase.Warnings, projectIDs ...string) {
	if uc.progress == nil {
		return
	}
	seen := make(map[string]struct{}, len(projectIDs))
	for _, id := range projectIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, err := uc.progress.Recalculate(ctx, id); err != nil {
			logger.WithRequestID(ctx, uc.logger).Error("project recalculation failed", zap.String("project_id", id), zap.Error(err))
			warnings.Add(fmt.Errorf("project progress not refreshed: %w", err))
		}
	}
}

func (uc *UseCase) logWarnings(ctx context.Context, taskID string, warnings usecase.Warnings) {
	if len(warnings) == 0 {
		return
	}
	logger.WithRequestID(ctx, uc.logger).Warn("task mutation completed with warnings",
		zap.String("task_id", taskID),
		zap.Strings("warnings", warnings))
}

func prepareSubtask(st *domain.Subtask, now time.Time) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.Priority == "" {
		st.Priority = domain.PriorityMedium
	}
	if st.Completed && st.CompletedAt == nil {
		stamp := now
		st.CompletedAt = &stamp
	}
	if !st.Completed {
		st.CompletedAt = nil
	}
}

func isOwner(t *domain.Task, userID string) bool {
	for _, id := range t.Owners {
		if id == userID {
			return true
		}
	}
	return false
}
