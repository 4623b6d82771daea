package usecase

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
)

// EventBuffer holds activity entries and notifications whose primary write
// failed so they can be replayed later.
type EventBuffer interface {
	BufferActivity(ctx context.Context, entry *domain.ActivityLogEntry) error
	BufferNotification(ctx context.Context, notification *domain.Notification) error
}

// NotificationPublisher pushes a stored notification to real-time subscribers.
type NotificationPublisher interface {
	Publish(ctx context.Context, notification *domain.Notification) error
}
