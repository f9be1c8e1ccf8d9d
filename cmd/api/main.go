package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/KP-1306/vaiyu-sub006/internal/api/http"
	"github.com/KP-1306/vaiyu-sub006/internal/api/http/handlers"
	"github.com/KP-1306/vaiyu-sub006/internal/audit"
	"github.com/KP-1306/vaiyu-sub006/internal/auth"
	"github.com/KP-1306/vaiyu-sub006/internal/config"
	"github.com/KP-1306/vaiyu-sub006/internal/events"
	"github.com/KP-1306/vaiyu-sub006/internal/idempotency"
	"github.com/KP-1306/vaiyu-sub006/internal/observability"
	"github.com/KP-1306/vaiyu-sub006/internal/persistence"
	"github.com/KP-1306/vaiyu-sub006/internal/queue"
	"github.com/KP-1306/vaiyu-sub006/internal/repository"
	"github.com/KP-1306/vaiyu-sub006/internal/service"
	"github.com/KP-1306/vaiyu-sub006/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	store := repository.NewStore(pg.PoolHandle())
	dispatcher := events.NewInMemoryDispatcher()
	auditor := audit.NewRecorder(store, logger)

	notifications := service.NewNotificationService(cfg.Notification, logger)
	notifications.Register(dispatcher)

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:       store,
		Dispatcher:  dispatcher,
		Auditor:     auditor,
		Logger:      logger,
		MediaPrefix: cfg.Media.AllowedPrefix,
	})

	claimLease := cfg.Queue.Budget() + 10*time.Second
	assignmentService := service.NewAssignmentService(store, ticketService, nil, claimLease, logger)
	importService := service.NewImportService(store, dispatcher, auditor, claimLease, logger)

	assignRunner := assignmentService.Runner(logger, metrics)
	importRunner := importService.Runner(logger, metrics)

	scheduler := worker.NewScheduler(cfg.Queue, assignRunner, importRunner, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, store.Staff())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	boundedCfg := queue.BoundedConfig{
		BatchSize:       cfg.Queue.BatchSize,
		InterBatchDelay: cfg.Queue.InterBatchDelay(),
		Budget:          cfg.Queue.Budget(),
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:           handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:          handlers.NewTicketsHandler(ticketService),
		StaffTickets:     handlers.NewStaffTicketsHandler(ticketService),
		Staff:            handlers.NewStaffHandler(store, tokens),
		Imports:          handlers.NewImportsHandler(importService, importRunner, boundedCfg),
		AuthMiddleware:   authMiddleware,
		IdempotencyStore: idempotency.NewRedisStore(redis.Client),
		IdempotencyTTL:   cfg.Idempotency.TTL(),
		Logger:           logger,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
