package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/internal/infrastructure/buffer"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/repository/memory"
)

type switchHealth struct{ online bool }

func (h *switchHealth) IsOnline() bool { return h.online }

type flakyActivity struct {
	repository.ActivityRepository
	fail bool
}

func (r *flakyActivity) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	if r.fail {
		return errors.New("still down")
	}
	return r.ActivityRepository.Append(ctx, entry)
}

type processorFixture struct {
	store         *buffer.Store
	health        *switchHealth
	activity      *flakyActivity
	notifications repository.NotificationRepository
	processor     *BufferProcessor
	bridge        *BufferBridge
}

func newProcessorFixture(t *testing.T) *processorFixture {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "")
	if err != nil {
		t.Fatalf("open buffer: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mem := memory.NewStore()
	f := &processorFixture{
		store:         store,
		health:        &switchHealth{online: true},
		activity:      &flakyActivity{ActivityRepository: memory.NewActivityRepository(mem)},
		notifications: memory.NewNotificationRepository(mem),
	}
	f.processor = NewBufferProcessor(store, f.health, f.activity, f.notifications, nil, nil, ProcessorConfig{
		Interval:   time.Hour,
		MaxRetries: 2,
	})
	f.bridge = NewBufferBridge(f.processor)
	return f
}

func TestDrainReplaysBufferedWrites(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(t)
	ts := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)

	if err := f.bridge.BufferActivity(ctx, &domain.ActivityLogEntry{ID: "a1", UserID: "u1", Action: domain.ActionTaskCreated, Timestamp: ts}); err != nil {
		t.Fatalf("buffer activity: %v", err)
	}
	if err := f.bridge.BufferNotification(ctx, &domain.Notification{ID: "n1", UserID: "u2", Title: "hi", CreatedAt: ts}); err != nil {
		t.Fatalf("buffer notification: %v", err)
	}
	if f.processor.Size() != 2 {
		t.Fatalf("size = %d", f.processor.Size())
	}

	f.health.online = false
	if err := f.processor.Drain(ctx); err != nil {
		t.Fatalf("offline drain: %v", err)
	}
	if f.processor.Size() != 2 {
		t.Fatalf("offline drain consumed items")
	}

	f.health.online = true
	if err := f.processor.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if f.processor.Size() != 0 {
		t.Fatalf("size after drain = %d", f.processor.Size())
	}
	entries, _ := f.activity.List(ctx, repository.ActivityFilter{Limit: 10})
	if len(entries) != 1 || entries[0].ID != "a1" {
		t.Fatalf("entries = %+v", entries)
	}
	notes, _ := f.notifications.ListForUser(ctx, "u2", false, 10)
	if len(notes) != 1 || notes[0].ID != "n1" {
		t.Fatalf("notifications = %+v", notes)
	}
}

func TestDrainDropsAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(t)
	f.activity.fail = true

	if err := f.bridge.BufferActivity(ctx, &domain.ActivityLogEntry{ID: "a1", Action: domain.ActionTaskUpdated}); err != nil {
		t.Fatalf("buffer: %v", err)
	}

	_ = f.processor.Drain(ctx)
	batch, _ := f.store.GetBatch(10)
	if len(batch) != 1 || batch[0].Retries != 1 || batch[0].LastError != "still down" {
		t.Fatalf("after first failure = %+v", batch)
	}

	_ = f.processor.Drain(ctx)
	if f.processor.Size() != 0 {
		t.Fatalf("item kept after max retries")
	}
}

func TestBridgeRejectsNil(t *testing.T) {
	bridge := NewBufferBridge(nil)
	if err := bridge.BufferActivity(context.Background(), &domain.ActivityLogEntry{}); err != domain.ErrInvalidPayload {
		t.Fatalf("err = %v", err)
	}
}
