package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/internal/infrastructure/buffer"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention drops items older than this on each cleanup run; zero keeps them.
	Retention time.Duration
}

// BufferProcessor replays buffered activity entries and notifications into
// their repositories on a cron schedule.
type BufferProcessor struct {
	store         *buffer.Store
	monitor       ConnectionHealth
	activity      repository.ActivityRepository
	notifications repository.NotificationRepository
	publisher     usecase.NotificationPublisher
	logger        *zap.Logger
	cron          *cron.Cron
	cfg           ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	activity repository.ActivityRepository,
	notifications repository.NotificationRepository,
	publisher usecase.NotificationPublisher,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:         store,
		monitor:       monitor,
		activity:      activity,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
		cfg:           cfg,
		cron:          cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})
	if cfg.Retention > 0 {
		_, _ = bp.cron.AddFunc("@hourly", bp.cleanup)
	}

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain replays one batch synchronously. Items that fail are requeued until
// MaxRetries, then dropped with an error log.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := bp.processItem(ctx, item); err != nil {
			item.Retries++
			if item.Retries >= bp.cfg.MaxRetries {
				bp.logger.Error("dropping buffer item (max retries reached)",
					zap.String("item_id", item.ID),
					zap.String("entity", item.Entity),
					zap.Error(err))
				_ = bp.store.Remove(item)
				continue
			}
			bp.logger.Warn("buffer item replay failed",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.Int("retries", item.Retries),
				zap.Error(err))
			if err := bp.store.Requeue(item, err); err != nil {
				bp.logger.Error("failed to requeue buffer item", zap.Error(err))
			}
			continue
		}

		if err := bp.store.Remove(item); err != nil {
			bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
		}
	}
	return nil
}

// Enqueue persists item for a later drain. Callers reach for the buffer after
// the primary write already failed, so there is no immediate retry here.
func (bp *BufferProcessor) Enqueue(_ context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}
	if err := bp.store.Enqueue(item); err != nil {
		return fmt.Errorf("buffer %s: %w", item.Entity, err)
	}
	bp.logger.Info("write buffered", zap.String("entity", item.Entity), zap.String("item_id", item.ID))
	return nil
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) cleanup() {
	removed, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
	if err != nil {
		bp.logger.Error("buffer cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		bp.logger.Warn("expired buffer items dropped", zap.Int("count", removed))
	}
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if item.Operation != buffer.OperationCreate {
		return fmt.Errorf("unsupported operation %s", item.Operation)
	}

	switch item.Entity {
	case buffer.EntityActivity:
		var entry domain.ActivityLogEntry
		if err := json.Unmarshal(item.Data, &entry); err != nil {
			return err
		}
		return bp.activity.Append(ctx, &entry)

	case buffer.EntityNotification:
		var notification domain.Notification
		if err := json.Unmarshal(item.Data, &notification); err != nil {
			return err
		}
		if err := bp.notifications.Create(ctx, &notification); err != nil {
			return err
		}
		if bp.publisher != nil {
			if err := bp.publisher.Publish(ctx, &notification); err != nil {
				bp.logger.Debug("replayed notification publish failed", zap.Error(err))
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}
