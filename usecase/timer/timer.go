package timer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/logger"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase"
	"github.com/fastygo/taskpulse/usecase/activity"
)

// maxSaveAttempts bounds how often a transition is replayed after a version conflict.
const maxSaveAttempts = 3

// Result is returned by every timer mutation.
type Result struct {
	Task                *domain.Task     `json:"task"`
	TotalElapsedSeconds int64            `json:"total_elapsed_seconds"`
	TotalElapsedMinutes float64          `json:"total_elapsed_minutes"`
	Warnings            usecase.Warnings `json:"-"`
}

// UseCase drives the task timer. Each mutation holds the task lock, works on a
// copy and persists it with a version check, so concurrent requests cannot
// both win the same transition.
type UseCase struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	progress usecase.ProgressEngine
	emitter  *activity.Emitter
	locker   usecase.TaskLocker
	logger   *zap.Logger

	Now func() time.Time
}

func New(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	progress usecase.ProgressEngine,
	emitter *activity.Emitter,
	locker usecase.TaskLocker,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = usecase.NewLocalLocker()
	}
	return &UseCase{
		tasks:    tasks,
		projects: projects,
		progress: progress,
		emitter:  emitter,
		locker:   locker,
		logger:   logger,
		Now:      time.Now,
	}
}

// Start opens a session; a todo task moves to in_progress.
func (uc *UseCase) Start(ctx context.Context, actor domain.Actor, taskID string) (*Result, error) {
	return uc.mutate(ctx, actor, taskID, domain.TimerStart, func(t *domain.Task, now time.Time) (map[string]interface{}, error) {
		return nil, t.StartTimer(now)
	})
}

// Pause closes the running session.
func (uc *UseCase) Pause(ctx context.Context, actor domain.Actor, taskID string) (*Result, error) {
	return uc.mutate(ctx, actor, taskID, domain.TimerPause, func(t *domain.Task, now time.Time) (map[string]interface{}, error) {
		session, err := t.PauseTimer(now)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"session_seconds": session.DurationSeconds}, nil
	})
}

// Resume opens a new session without changing the task status.
func (uc *UseCase) Resume(ctx context.Context, actor domain.Actor, taskID string) (*Result, error) {
	return uc.mutate(ctx, actor, taskID, domain.TimerResume, func(t *domain.Task, now time.Time) (map[string]interface{}, error) {
		return nil, t.ResumeTimer(now)
	})
}

// Stop finalizes tracking and, when completeTask is set, completes the task.
func (uc *UseCase) Stop(ctx context.Context, actor domain.Actor, taskID string, completeTask bool) (*Result, error) {
	return uc.mutate(ctx, actor, taskID, domain.TimerStop, func(t *domain.Task, now time.Time) (map[string]interface{}, error) {
		if err := t.StopTimer(now, completeTask); err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"actual_duration": *t.ActualDuration,
			"complete_task":   completeTask,
		}, nil
	})
}

// Status reports the timer without changing anything.
func (uc *UseCase) Status(ctx context.Context, actor domain.Actor, taskID string) (domain.TimerStatus, error) {
	task, err := usecase.RequireTask(ctx, uc.tasks, uc.projects, actor, taskID, domain.CapView)
	if err != nil {
		return domain.TimerStatus{}, err
	}
	return task.TimerStatusAt(uc.Now()), nil
}

type transition func(t *domain.Task, now time.Time) (map[string]interface{}, error)

func (uc *UseCase) mutate(ctx context.Context, actor domain.Actor, taskID string, action domain.TimerAction, apply transition) (*Result, error) {
	log := logger.WithRequestID(ctx, uc.logger).With(
		zap.String("task_id", taskID),
		zap.String("action", string(action)),
	)

	release, ok, err := uc.locker.TryLock(ctx, taskID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "timer lock unavailable", err)
	}
	if !ok {
		return nil, domain.ErrTimerBusy
	}
	defer release()

	var (
		current, next *domain.Task
		extra         map[string]interface{}
		overdue       bool
		now           time.Time
	)
	// The lock keeps other timer operations out, so a version conflict here
	// comes from an unrelated edit; the transition is replayed on fresh state.
	for attempt := 1; ; attempt++ {
		current, err = usecase.RequireTask(ctx, uc.tasks, uc.projects, actor, taskID, domain.CapEdit)
		if err != nil {
			return nil, err
		}

		now = uc.Now()
		next = current.Clone()
		extra, err = apply(next, now)
		if err != nil {
			return nil, err
		}

		overdue = next.IsOverdue(now) && !next.OverdueNotified
		if overdue {
			next.OverdueNotified = true
		}
		next.UpdatedAt = now

		err = uc.tasks.Update(ctx, next)
		if err == nil {
			break
		}
		if !domain.IsDomainError(err, domain.ErrCodeConflict) {
			return nil, fmt.Errorf("persist timer %s: %w", action, err)
		}
		if attempt >= maxSaveAttempts {
			return nil, domain.ErrTimerBusy
		}
		log.Debug("timer save replayed after concurrent edit", zap.Int("attempt", attempt))
	}

	var warnings usecase.Warnings
	if next.ProjectID != "" && uc.progress != nil {
		if _, err := uc.progress.Recalculate(ctx, next.ProjectID); err != nil {
			log.Error("project recalculation failed", zap.String("project_id", next.ProjectID), zap.Error(err))
			warnings.Add(fmt.Errorf("project progress not refreshed: %w", err))
		}
	}

	if extra == nil {
		extra = map[string]interface{}{}
	}
	extra["elapsed_seconds"] = next.TimerElapsedSeconds
	warnings.Add(uc.emitter.TaskEvent(ctx, actor, string(action), next, extra))
	if next.Status != current.Status {
		warnings.Add(uc.emitter.TaskStatusChanged(ctx, actor, next, current.Status, next.Status))
	}
	if overdue {
		warnings.Add(uc.emitter.TaskOverdue(ctx, actor, next))
	}
	if len(warnings) > 0 {
		log.Warn("timer mutation completed with warnings", zap.Strings("warnings", warnings))
	}

	total := next.TimerStatusAt(now).TotalCurrentSeconds
	return &Result{
		Task:                next,
		TotalElapsedSeconds: total,
		TotalElapsedMinutes: domain.Round2(float64(total) / 60),
		Warnings:            warnings,
	}, nil
}
