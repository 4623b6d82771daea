package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/internal/infrastructure/buffer"
	"github.com/fastygo/taskpulse/usecase"
)

// BufferBridge adapts the processor to usecase.EventBuffer.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferActivity(ctx context.Context, entry *domain.ActivityLogEntry) error {
	if b.processor == nil || entry == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:       entry.ID,
		UserID:   entry.UserID,
		Entity:   buffer.EntityActivity,
		Data:     payload,
		Priority: 3,
	}
	return b.processor.Enqueue(ctx, item)
}

func (b *BufferBridge) BufferNotification(ctx context.Context, notification *domain.Notification) error {
	if b.processor == nil || notification == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:       notification.ID,
		UserID:   notification.UserID,
		Entity:   buffer.EntityNotification,
		Data:     payload,
		Priority: 2,
	}
	return b.processor.Enqueue(ctx, item)
}

var _ usecase.EventBuffer = (*BufferBridge)(nil)
