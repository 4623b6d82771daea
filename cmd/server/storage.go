package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/internal/config"
	"github.com/fastygo/taskpulse/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskpulse/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskpulse/internal/infrastructure/redis"
	"github.com/fastygo/taskpulse/internal/services/lifecycle"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/repository/memory"
	"github.com/fastygo/taskpulse/repository/postgres"
	redisRepo "github.com/fastygo/taskpulse/repository/redis"
	"github.com/fastygo/taskpulse/usecase"
)

// storage bundles the repositories and coordination ports selected by
// STORAGE_DRIVER.
type storage struct {
	users         repository.UserRepository
	teams         repository.TeamRepository
	tasks         repository.TaskRepository
	projects      repository.ProjectRepository
	activity      repository.ActivityRepository
	notifications repository.NotificationRepository
	sessions      repository.SessionRepository
	locker        usecase.TaskLocker
	publisher     usecase.NotificationPublisher
	probes        []monitor.Probe
}

func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (*storage, error) {
	if !cfg.UsesPostgres() {
		return openMemory(cfg, logger)
	}

	if err := pgInfra.RunMigrations(cfg, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	manager.Register("redis", func(ctx context.Context) error {
		redisInfra.Close(redisClient, logger)
		return nil
	})

	return &storage{
		users:         postgres.NewUserRepository(pool),
		teams:         postgres.NewTeamRepository(pool),
		tasks:         postgres.NewTaskRepository(pool),
		projects:      postgres.NewProjectRepository(pool),
		activity:      postgres.NewActivityRepository(pool),
		notifications: postgres.NewNotificationRepository(pool),
		sessions:      redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL),
		locker:        redisRepo.NewTaskLocker(redisClient, cfg.Timer.LockTTL),
		publisher:     redisRepo.NewNotificationPublisher(redisClient, cfg.Notifications.Channel),
		probes: []monitor.Probe{
			monitor.PostgresProbe(pool),
			monitor.RedisProbe(redisClient),
		},
	}, nil
}

func openMemory(cfg *config.Config, logger *zap.Logger) (*storage, error) {
	store := memory.NewStore()
	if cfg.Storage.SeedFile != "" {
		n, err := memory.LoadSeed(store, cfg.Storage.SeedFile)
		if err != nil {
			return nil, err
		}
		logger.Info("memory store seeded", zap.String("file", cfg.Storage.SeedFile), zap.Int("records", n))
	}
	logger.Warn("using memory storage; data is lost on restart")

	return &storage{
		users:         memory.NewUserRepository(store),
		teams:         memory.NewTeamRepository(store),
		tasks:         memory.NewTaskRepository(store),
		projects:      memory.NewProjectRepository(store),
		activity:      memory.NewActivityRepository(store),
		notifications: memory.NewNotificationRepository(store),
		sessions:      memory.NewSessionRepository(cfg.JWT.SessionTTL),
		locker:        usecase.NewLocalLocker(),
	}, nil
}
