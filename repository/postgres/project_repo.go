package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

const projectColumns = `
	id, name, description, owner_id, collaborators, assigned_teams, project_managers,
	task_count, completed_task_count, progress_percentage, auto_calculated_status, status_override,
	start_date, end_date, version, created_at, updated_at`

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + `
	FROM projects
	WHERE ($1 = '' AND cardinality($2::text[]) = 0 AND $3 = '')
	   OR ($3 <> '' AND $3 = ANY(project_managers))
	   OR ($1 <> '' AND (owner_id = $1 OR $1 = ANY(collaborators) OR $1 = ANY(project_managers)))
	   OR assigned_teams && $2::text[]
	ORDER BY created_at DESC, id
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query,
		filter.VisibleTo,
		textArray(filter.TeamIDs),
		filter.ManagedBy,
		limitArg(filter.Limit, filter.Unbounded),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil {
		return nil, domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO projects (
		id, name, description, owner_id, collaborators, assigned_teams, project_managers,
		task_count, completed_task_count, progress_percentage, auto_calculated_status, status_override,
		start_date, end_date, version, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1,
		COALESCE($15, NOW()), COALESCE($16, NOW()))
	RETURNING version, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.OwnerID,
		textArray(project.Collaborators),
		textArray(project.AssignedTeams),
		textArray(project.ProjectManagers),
		project.TaskCount,
		project.CompletedTaskCount,
		project.ProgressPercentage,
		string(project.AutoCalculatedStatus),
		statusOverrideArg(project.StatusOverride),
		nullTimePtr(project.StartDate),
		nullTimePtr(project.EndDate),
		nullTime(project.CreatedAt),
		nullTime(project.UpdatedAt),
	).Scan(&project.Version, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE projects
	SET name = $3,
		description = $4,
		owner_id = $5,
		collaborators = $6,
		assigned_teams = $7,
		project_managers = $8,
		task_count = $9,
		completed_task_count = $10,
		progress_percentage = $11,
		auto_calculated_status = $12,
		status_override = $13,
		start_date = $14,
		end_date = $15,
		updated_at = COALESCE($16, NOW()),
		version = version + 1
	WHERE id = $1 AND version = $2
	RETURNING version, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Version,
		project.Name,
		project.Description,
		project.OwnerID,
		textArray(project.Collaborators),
		textArray(project.AssignedTeams),
		textArray(project.ProjectManagers),
		project.TaskCount,
		project.CompletedTaskCount,
		project.ProgressPercentage,
		string(project.AutoCalculatedStatus),
		statusOverrideArg(project.StatusOverride),
		nullTimePtr(project.StartDate),
		nullTimePtr(project.EndDate),
		nullTime(project.UpdatedAt),
	).Scan(&project.Version, &project.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, project.ID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return domain.ErrProjectNotFound
			}
			return domain.ErrStaleVersion
		}
		return err
	}
	return nil
}

func statusOverrideArg(s *domain.ProjectStatus) interface{} {
	if s == nil {
		return nil
	}
	return string(*s)
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var project domain.Project
	var (
		auto       string
		override   *string
		start, end *time.Time
	)

	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.OwnerID,
		&project.Collaborators,
		&project.AssignedTeams,
		&project.ProjectManagers,
		&project.TaskCount,
		&project.CompletedTaskCount,
		&project.ProgressPercentage,
		&auto,
		&override,
		&start,
		&end,
		&project.Version,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}

	project.AutoCalculatedStatus = domain.ProjectStatus(auto)
	if override != nil {
		s := domain.ProjectStatus(*override)
		project.StatusOverride = &s
	}
	project.StartDate = start
	project.EndDate = end
	return &project, nil
}
