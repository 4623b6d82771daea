package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskpulse/api/handler"
	"github.com/fastygo/taskpulse/internal/config"
	"github.com/fastygo/taskpulse/internal/infrastructure/buffer"
	"github.com/fastygo/taskpulse/internal/infrastructure/monitor"
	"github.com/fastygo/taskpulse/internal/middleware"
	"github.com/fastygo/taskpulse/internal/router"
	"github.com/fastygo/taskpulse/internal/services"
	"github.com/fastygo/taskpulse/internal/services/lifecycle"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
	"github.com/fastygo/taskpulse/pkg/logger"
	activityUC "github.com/fastygo/taskpulse/usecase/activity"
	analyticsUC "github.com/fastygo/taskpulse/usecase/analytics"
	authUC "github.com/fastygo/taskpulse/usecase/auth"
	profileUC "github.com/fastygo/taskpulse/usecase/profile"
	projectUC "github.com/fastygo/taskpulse/usecase/project"
	taskUC "github.com/fastygo/taskpulse/usecase/task"
	timerUC "github.com/fastygo/taskpulse/usecase/timer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx := manager.Listen(context.Background())

	store, err := openStorage(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage setup failed", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(bufferStore, 10*time.Second, zapLogger, store.probes...)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		store.activity,
		store.notifications,
		store.publisher,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	emitter := activityUC.NewEmitter(
		store.activity,
		store.notifications,
		services.NewBufferBridge(bufferProcessor),
		store.publisher,
		zapLogger,
	)

	projectUseCase := projectUC.New(store.projects, store.tasks, emitter, zapLogger)
	projectUseCase.StaleAfter = cfg.Analytics.StaleAfter

	taskUseCase := taskUC.New(store.tasks, store.projects, projectUseCase, emitter, zapLogger)
	timerUseCase := timerUC.New(store.tasks, store.projects, projectUseCase, emitter, store.locker, zapLogger)

	analyticsUseCase := analyticsUC.New(store.tasks, store.projects, store.teams, store.users, zapLogger)
	analyticsUseCase.TrendDays = cfg.Analytics.TrendDays
	analyticsUseCase.HistoryDays = cfg.Analytics.HistoryDays

	activityUseCase := activityUC.New(store.activity, store.notifications, store.projects, zapLogger)

	tokens := middleware.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL)
	authUseCase := authUC.New(store.users, store.teams, store.sessions, tokens, zapLogger)
	profileUseCase := profileUC.New(store.users, store.teams, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.SessionTTL),
		Profile:      apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:         apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Timer:        apiHandler.NewTimerHandler(timerUseCase, ctxAdapter, zapLogger),
		Project:      apiHandler.NewProjectHandler(projectUseCase, analyticsUseCase, ctxAdapter, zapLogger),
		Analytics:    apiHandler.NewAnalyticsHandler(analyticsUseCase, ctxAdapter, zapLogger),
		PM:           apiHandler.NewPMHandler(analyticsUseCase, projectUseCase, activityUseCase, ctxAdapter, zapLogger),
		Notification: apiHandler.NewNotificationHandler(activityUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers,
		middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger),
		middleware.ResolveActor(authUseCase, cfg.Context.RequestTimeout, zapLogger),
	)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver))
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	if err := manager.Err(); err != nil {
		zapLogger.Fatal("server stopped on component failure", zap.Error(err))
	}
}
