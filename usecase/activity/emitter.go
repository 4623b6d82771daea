package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase"
)

const publishTimeout = 2 * time.Second

// Emitter writes activity entries and notifications. A failed primary write
// falls back to the event buffer; when that fails too the error is returned so
// the caller can surface it, but the triggering mutation is never undone.
type Emitter struct {
	activity      repository.ActivityRepository
	notifications repository.NotificationRepository
	buffer        usecase.EventBuffer
	publisher     usecase.NotificationPublisher
	logger        *zap.Logger

	Now func() time.Time
}

func NewEmitter(
	activity repository.ActivityRepository,
	notifications repository.NotificationRepository,
	buffer usecase.EventBuffer,
	publisher usecase.NotificationPublisher,
	logger *zap.Logger,
) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		activity:      activity,
		notifications: notifications,
		buffer:        buffer,
		publisher:     publisher,
		logger:        logger,
		Now:           time.Now,
	}
}

// Record appends an activity entry, filling ID and timestamp when missing.
func (e *Emitter) Record(ctx context.Context, entry domain.ActivityLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = e.Now()
	}

	err := e.activity.Append(ctx, &entry)
	if err == nil {
		return nil
	}
	e.logger.Warn("activity write failed, buffering",
		zap.String("action", entry.Action),
		zap.String("entity_id", entry.EntityID),
		zap.Error(err))

	if e.buffer != nil {
		bufErr := e.buffer.BufferActivity(ctx, &entry)
		if bufErr == nil {
			return nil
		}
		err = errors.Join(err, bufErr)
	}
	e.logger.Error("activity entry lost",
		zap.String("action", entry.Action),
		zap.String("entity_id", entry.EntityID),
		zap.Error(err))
	return fmt.Errorf("activity %s for %s not recorded: %w", entry.Action, entry.EntityID, err)
}

// Notify stores one copy of tmpl per recipient, skipping the actor and
// duplicates, then publishes each stored copy without waiting for delivery.
func (e *Emitter) Notify(ctx context.Context, recipients []string, actorID string, tmpl domain.Notification) error {
	now := e.Now()
	seen := make(map[string]struct{}, len(recipients))
	var errs []error

	for _, userID := range recipients {
		if userID == "" || userID == actorID {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		n := tmpl
		n.ID = uuid.NewString()
		n.UserID = userID
		n.Read = false
		n.CreatedAt = now
		if n.Priority == "" {
			n.Priority = domain.NotifyMedium
		}

		if err := e.storeNotification(ctx, &n); err != nil {
			errs = append(errs, err)
			continue
		}
		e.publish(&n)
	}
	return errors.Join(errs...)
}

func (e *Emitter) storeNotification(ctx context.Context, n *domain.Notification) error {
	err := e.notifications.Create(ctx, n)
	if err == nil {
		return nil
	}
	e.logger.Warn("notification write failed, buffering",
		zap.String("user_id", n.UserID),
		zap.String("type", string(n.Type)),
		zap.Error(err))

	if e.buffer != nil {
		bufErr := e.buffer.BufferNotification(ctx, n)
		if bufErr == nil {
			return nil
		}
		err = errors.Join(err, bufErr)
	}
	e.logger.Error("notification lost",
		zap.String("user_id", n.UserID),
		zap.String("type", string(n.Type)),
		zap.Error(err))
	return fmt.Errorf("notification for %s not delivered: %w", n.UserID, err)
}

func (e *Emitter) publish(n *domain.Notification) {
	if e.publisher == nil {
		return
	}
	copied := *n
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := e.publisher.Publish(ctx, &copied); err != nil {
			e.logger.Debug("notification publish failed",
				zap.String("notification_id", copied.ID),
				zap.Error(err))
		}
	}()
}

// details marshals v for ActivityLogEntry.Details; marshal failures drop the details.
func details(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
