package activity

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase"
)

const defaultFeedLimit = 50

// UseCase serves the activity feed and a user's notification inbox.
type UseCase struct {
	activity      repository.ActivityRepository
	notifications repository.NotificationRepository
	projects      repository.ProjectRepository
	logger        *zap.Logger
}

func New(
	activity repository.ActivityRepository,
	notifications repository.NotificationRepository,
	projects repository.ProjectRepository,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		activity:      activity,
		notifications: notifications,
		projects:      projects,
		logger:        logger,
	}
}

// ListActivity returns the newest entries the actor may see. Only project
// managers and admins read the feed. With projectID set the feed is limited to
// that project, which the actor must manage.
func (uc *UseCase) ListActivity(ctx context.Context, actor domain.Actor, projectID string, limit int) ([]domain.ActivityLogEntry, error) {
	if !actor.IsElevated() {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	filter := repository.ActivityFilter{Limit: limit}
	if projectID != "" {
		if _, err := usecase.RequireProject(ctx, uc.projects, actor, projectID, domain.CapManage); err != nil {
			return nil, err
		}
		filter.ProjectID = projectID
		return uc.activity.List(ctx, filter)
	}
	if actor.IsAdmin() {
		return uc.activity.List(ctx, filter)
	}

	scope := usecase.ProjectScope(actor)
	scope.Unbounded = true
	projects, err := uc.projects.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		filter.ProjectIDs = append(filter.ProjectIDs, p.ID)
	}
	filter.UserID = actor.UserID
	return uc.activity.List(ctx, filter)
}

// ListNotifications returns the actor's own notifications, newest first.
func (uc *UseCase) ListNotifications(ctx context.Context, actor domain.Actor, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	return uc.notifications.ListForUser(ctx, actor.UserID, unreadOnly, limit)
}

// MarkRead flips one of the actor's notifications to read. Marking an already
// read notification is a no-op; another user's notification is not found.
func (uc *UseCase) MarkRead(ctx context.Context, actor domain.Actor, id string) (*domain.Notification, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.notifications.MarkRead(ctx, actor.UserID, id)
}
