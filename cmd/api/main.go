package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/persistence"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.Pool()
	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	dependencies := map[string]handlers.Pinger{}

	var (
		userRepo repository.UserRepository
		taskRepo repository.TaskRepository
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pool)
		taskRepo = repository.NewTaskRepository(pool)
		dependencies["postgres"] = pg
	} else {
		logger.Warn("using in-memory user and task stores")
		userRepo = repository.NewMemoryUserRepository()
		taskRepo = repository.NewMemoryTaskRepository()
	}

	var sessionRepo repository.SessionRepository
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redis.Close()
		sessionRepo = repository.NewRedisSessionRepository(redis.Client, cfg.Session.KeyPrefix, cfg.Auth.RefreshTTL())
		dependencies["redis"] = redis
	case config.SessionBackendPostgres:
		sessionRepo = repository.NewSessionRepository(pool)
	default:
		logger.Warn("using in-memory session store; sessions are lost on restart")
		sessionRepo = repository.NewMemorySessionRepository()
	}
	logger.Info("session store selected", zap.String("backend", string(cfg.Session.Backend)))

	dispatcher := events.NewInMemoryDispatcher()
	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, nil)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Tokens:      tokenMgr,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	userService := service.NewUserService(cfg.Auth, userRepo, dispatcher, logger)
	taskService := service.NewTaskService(taskRepo)
	if err := userService.EnsureBootstrapUser(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
		logger.Fatal("failed to bootstrap admin user", zap.Error(err))
	}
	service.NewAccountEventsService(dispatcher, taskService, sessionRepo, logger).RegisterHandlers()

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Tasks:          handlers.NewTasksHandler(taskService),
		AuthMiddleware: auth.NewAuthMiddleware(tokenMgr),
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
