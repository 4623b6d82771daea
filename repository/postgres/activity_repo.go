package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a Postgres-backed append-only activity log.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

// Append is idempotent on the entry id so buffered replays never duplicate rows.
func (r *activityRepository) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	if entry == nil {
		return domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO activity_log (id, user_id, action, entity_type, entity_id, entity_name, project_id, details, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
	ON CONFLICT (id) DO NOTHING
	`

	var details []byte
	if len(entry.Details) > 0 {
		details = entry.Details
	}

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.EntityName,
		nullString(entry.ProjectID),
		details,
		nullTime(entry.Timestamp),
	)
	return err
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	const query = `
	SELECT id, user_id, action, entity_type, entity_id, entity_name, project_id, details, created_at
	FROM activity_log
	WHERE ($1 = '' OR project_id = $1)
	  AND (
		(cardinality($2::text[]) = 0 AND $3 = '')
		OR ($3 <> '' AND user_id = $3)
		OR project_id = ANY($2::text[])
	  )
	ORDER BY created_at DESC
	LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query,
		filter.ProjectID,
		textArray(filter.ProjectIDs),
		filter.UserID,
		clampLimit(filter.Limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ActivityLogEntry
	for rows.Next() {
		var (
			entry     domain.ActivityLogEntry
			projectID *string
			details   []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.EntityName,
			&projectID,
			&details,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		entry.ProjectID = derefString(projectID)
		if len(details) > 0 {
			entry.Details = append([]byte(nil), details...)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a Postgres-backed NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) repository.NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n == nil || n.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO notifications (id, user_id, title, message, type, priority, read, entity_type, entity_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))
	ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		string(n.Type),
		string(n.Priority),
		n.Read,
		n.EntityType,
		n.EntityID,
		nullTime(n.CreatedAt),
	)
	return err
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	const query = `
	SELECT id, user_id, title, message, type, priority, read, entity_type, entity_id, created_at
	FROM notifications
	WHERE user_id = $1 AND (NOT $2 OR read = FALSE)
	ORDER BY created_at DESC
	LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, unreadOnly, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error) {
	const query = `
	UPDATE notifications SET read = TRUE
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, title, message, type, priority, read, entity_type, entity_id, created_at
	`
	return scanNotification(r.pool.QueryRow(ctx, query, id, userID))
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var (
		n              domain.Notification
		kind, priority string
	)
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&kind,
		&priority,
		&n.Read,
		&n.EntityType,
		&n.EntityID,
		&n.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	n.Type = domain.NotificationType(kind)
	n.Priority = domain.NotificationPriority(priority)
	return &n, nil
}
