package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appproject "github.com/taskfabric/backend/internal/application/project"
	"github.com/taskfabric/backend/internal/domain/project"
	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/infrastructure/auth"
	"github.com/taskfabric/backend/internal/infrastructure/cache"
	"github.com/taskfabric/backend/internal/infrastructure/client"
	"github.com/taskfabric/backend/internal/infrastructure/config"
	"github.com/taskfabric/backend/internal/infrastructure/event"
	"github.com/taskfabric/backend/internal/infrastructure/logger"
	"github.com/taskfabric/backend/internal/infrastructure/persistence"
	"github.com/taskfabric/backend/internal/infrastructure/telemetry"
	"github.com/taskfabric/backend/internal/interfaces/http/handler"
	"github.com/taskfabric/backend/internal/interfaces/http/router"
)

const serviceName = "project-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting project service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName == "" {
			cfg.Telemetry.ServiceName = serviceName
		}
		tp, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
		if err != nil {
			log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	models := []any{&project.Project{}, &project.ProjectTeam{}}
	if cfg.Event.OutboxEnabled {
		models = append(models, &event.OutboxModel{})
	}
	if err := db.Migrate(models...); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	store := cache.NewRedisStoreWithClient(redisClient)
	defer store.Close()

	js, err := event.ConnectJetStreamWithRetry(cfg.NATS.URL, cfg.NATS.Stream, cfg.NATS.ConnectTimeout)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer js.Close()

	codec := event.NewCodec()
	jsPublisher := event.NewJetStreamPublisher(js.JS, codec, log)

	var publisher shared.EventPublisher = jsPublisher
	if cfg.Event.OutboxEnabled {
		outboxRepo := event.NewGormOutboxRepository(db.DB)
		publisher = event.NewOutboxPublisher(outboxRepo, codec, log)

		processor := event.NewOutboxProcessor(outboxRepo, jsPublisher, event.OutboxProcessorConfig{
			PollInterval:    cfg.Event.PollInterval,
			BatchSize:       cfg.Event.BatchSize,
			RetentionPeriod: cfg.Event.RetentionPeriod,
		}, log)
		processor.Start(context.Background())
		defer processor.Stop()
		log.Info("Outbox relay started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval),
		)
	}

	teamLookup := client.NewHTTPTeamLookup(cfg.Services.TeamBaseURL, cfg.Services.LookupTimeout, log)
	userLookup := client.NewHTTPUserLookup(cfg.Services.UserBaseURL, cfg.Services.LookupTimeout, log)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenExpiration)

	projectRepo := persistence.NewGormProjectRepository(db.DB)
	projectService := appproject.NewService(projectRepo, store, teamLookup, userLookup, publisher, log)
	projectHandler := handler.NewProjectHandler(projectService)

	engine := router.NewEngine(serviceName, log)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}
	router.RegisterProjectRoutes(engine, projectHandler, tokens)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
