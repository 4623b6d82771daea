package repository

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
)

type ActivityFilter struct {
	ProjectID  string
	ProjectIDs []string
	UserID     string
	Limit      int
}

// ActivityRepository is append-only: entries are never updated or deleted.
type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLogEntry, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	// MarkRead flips read to true for the recipient's notification.
	MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error)
}

// Matches evaluates the filter in memory. ProjectIDs and UserID form a visibility
// scope: an entry matches when it belongs to one of the projects or was made by
// the user. With neither set the scope is unrestricted.
func (f ActivityFilter) Matches(e *domain.ActivityLogEntry) bool {
	if f.ProjectID != "" && e.ProjectID != f.ProjectID {
		return false
	}
	if len(f.ProjectIDs) == 0 && f.UserID == "" {
		return true
	}
	if f.UserID != "" && e.UserID == f.UserID {
		return true
	}
	return e.ProjectID != "" && contains(f.ProjectIDs, e.ProjectID)
}
