package main

import (
	"context"
	"flowdata/internal/config"
	"flowdata/internal/database"
	"flowdata/internal/router"
	"flowdata/internal/utils"
	"flowdata/internal/worker"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		utils.NewLogger("info", "json").Fatalf("Failed to load configuration: %v", err)
	}
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if _, err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		logger.Fatalf("Failed to apply migrations: %v", err)
	}

	// Initialize Redis
	redisClient, err := database.NewRedis(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger:   logger,
			LogLevel: asynq.InfoLevel,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.WithField("task", task.Type()).WithError(err).Error("Error processing task")
			}),
		},
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	worker.RegisterHandlers(mux, db, redisClient, cfg, logger)

	// Metrics and import status endpoints
	app := fiber.New(fiber.Config{
		AppName:               "flowdata-worker",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	router.Setup(app, worker.NewRedisStatusStore(redisClient, cfg.StatusTTL))
	go func() {
		if err := app.Listen(cfg.MetricsAddr); err != nil {
			logger.WithError(err).Error("Metrics server stopped")
		}
	}()

	// Run blocks until SIGTERM or SIGINT, then drains in-flight imports.
	logger.WithFields(logrus.Fields{
		"concurrency": cfg.WorkerConcurrency,
		"metrics":     cfg.MetricsAddr,
	}).Info("Worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatalf("Failed to start worker: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)

	logger.Info("Worker exited")
}
