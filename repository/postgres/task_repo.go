package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

const taskColumns = `
	id, title, description, status, priority, project_id, project_name,
	owners, assigned_users, collaborators, assigned_teams, tags,
	estimated_duration, actual_duration, due_date, start_time, end_time,
	is_timer_running, timer_elapsed_seconds, timer_started_at, timer_sessions, todos,
	overdue_notified, version, created_at, updated_at, completed_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR project_id = $1)
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR priority = $3)
	  AND (NOT $4 OR actual_duration IS NOT NULL)
	  AND (
		NOT $5
		OR $6 = ANY(owners) OR $6 = ANY(assigned_users) OR $6 = ANY(collaborators)
		OR assigned_teams && $7::text[]
		OR project_id = ANY($8::text[])
	  )
	ORDER BY created_at DESC, id
	LIMIT $9 OFFSET $10
	`
	rows, err := r.pool.Query(ctx, query,
		filter.ProjectID,
		string(filter.Status),
		string(filter.Priority),
		filter.HasActual,
		filter.Scoped(),
		filter.VisibleTo,
		textArray(filter.TeamIDs),
		textArray(filter.ProjectIDs),
		taskLimit(filter),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	return r.List(ctx, repository.TaskFilter{ProjectID: projectID, Unbounded: true})
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (
		id, title, description, status, priority, project_id, project_name,
		owners, assigned_users, collaborators, assigned_teams, tags,
		estimated_duration, actual_duration, due_date, start_time, end_time,
		is_timer_running, timer_elapsed_seconds, timer_started_at, timer_sessions, todos,
		overdue_notified, version, created_at, updated_at, completed_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		$18, $19, $20, $21, $22, $23, 1, COALESCE($24, NOW()), COALESCE($25, NOW()), $26)
	RETURNING version, created_at, updated_at
	`

	sessions, todos, err := marshalTaskDocs(task)
	if err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		nullString(task.ProjectID),
		task.ProjectName,
		textArray(task.Owners),
		textArray(task.AssignedUsers),
		textArray(task.Collaborators),
		textArray(task.AssignedTeams),
		textArray(task.Tags),
		task.EstimatedDuration,
		task.ActualDuration,
		nullTimePtr(task.DueDate),
		nullTimePtr(task.StartTime),
		nullTimePtr(task.EndTime),
		task.IsTimerRunning,
		task.TimerElapsedSeconds,
		nullTimePtr(task.TimerStartedAt),
		sessions,
		todos,
		task.OverdueNotified,
		nullTime(task.CreatedAt),
		nullTime(task.UpdatedAt),
		nullTimePtr(task.CompletedAt),
	).Scan(&task.Version, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $3,
		description = $4,
		status = $5,
		priority = $6,
		project_id = $7,
		project_name = $8,
		owners = $9,
		assigned_users = $10,
		collaborators = $11,
		assigned_teams = $12,
		tags = $13,
		estimated_duration = $14,
		actual_duration = $15,
		due_date = $16,
		start_time = $17,
		end_time = $18,
		is_timer_running = $19,
		timer_elapsed_seconds = $20,
		timer_started_at = $21,
		timer_sessions = $22,
		todos = $23,
		overdue_notified = $24,
		completed_at = $25,
		updated_at = COALESCE($26, NOW()),
		version = version + 1
	WHERE id = $1 AND version = $2
	RETURNING version, updated_at
	`

	sessions, todos, err := marshalTaskDocs(task)
	if err != nil {
		return err
	}

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Version,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		nullString(task.ProjectID),
		task.ProjectName,
		textArray(task.Owners),
		textArray(task.AssignedUsers),
		textArray(task.Collaborators),
		textArray(task.AssignedTeams),
		textArray(task.Tags),
		task.EstimatedDuration,
		task.ActualDuration,
		nullTimePtr(task.DueDate),
		nullTimePtr(task.StartTime),
		nullTimePtr(task.EndTime),
		task.IsTimerRunning,
		task.TimerElapsedSeconds,
		nullTimePtr(task.TimerStartedAt),
		sessions,
		todos,
		task.OverdueNotified,
		nullTimePtr(task.CompletedAt),
		nullTime(task.UpdatedAt),
	).Scan(&task.Version, &task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrStale(ctx, task.ID)
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// missOrStale tells a vanished row apart from a lost version race.
func (r *taskRepository) missOrStale(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrTaskNotFound
	}
	return domain.ErrStaleVersion
}

func marshalTaskDocs(task *domain.Task) ([]byte, []byte, error) {
	sessions := task.TimerSessions
	if sessions == nil {
		sessions = []domain.TimerSession{}
	}
	todos := task.Todos
	if todos == nil {
		todos = []domain.Subtask{}
	}
	s, err := json.Marshal(sessions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal timer sessions: %w", err)
	}
	t, err := json.Marshal(todos)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal todos: %w", err)
	}
	return s, t, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var (
		status, priority string
		projectID        *string
		sessions, todos  []byte
		due, start, end  *time.Time
		timerStarted     *time.Time
		completed        *time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&projectID,
		&task.ProjectName,
		&task.Owners,
		&task.AssignedUsers,
		&task.Collaborators,
		&task.AssignedTeams,
		&task.Tags,
		&task.EstimatedDuration,
		&task.ActualDuration,
		&due,
		&start,
		&end,
		&task.IsTimerRunning,
		&task.TimerElapsedSeconds,
		&timerStarted,
		&sessions,
		&todos,
		&task.OverdueNotified,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.Priority(priority)
	task.ProjectID = derefString(projectID)
	task.DueDate = due
	task.StartTime = start
	task.EndTime = end
	task.TimerStartedAt = timerStarted
	task.CompletedAt = completed
	if len(sessions) > 0 {
		if err := json.Unmarshal(sessions, &task.TimerSessions); err != nil {
			return nil, fmt.Errorf("decode timer sessions for %s: %w", task.ID, err)
		}
	}
	if len(todos) > 0 {
		if err := json.Unmarshal(todos, &task.Todos); err != nil {
			return nil, fmt.Errorf("decode todos for %s: %w", task.ID, err)
		}
	}

	return &task, nil
}
