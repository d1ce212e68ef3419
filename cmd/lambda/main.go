package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/kursadbilgin/notification-dispatcher/internal/app"
	"github.com/kursadbilgin/notification-dispatcher/internal/config"
	"github.com/kursadbilgin/notification-dispatcher/internal/observability"
	"github.com/kursadbilgin/notification-dispatcher/internal/queue"
	"github.com/kursadbilgin/notification-dispatcher/internal/service"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	if err := run(context.Background(), lambda.Start); err != nil {
		log.Fatal(err)
	}
}

// run wires the pipeline and hands the SQS handler to start.
func run(ctx context.Context, start func(handler any)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, "notification-dispatcher-lambda")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	components, err := app.NewComponents(ctx, cfg, logger)
	if err != nil {
		logger.Error("pipeline initialization failed", zap.Error(err))
		return fmt.Errorf("pipeline initialization failed: %w", err)
	}
	defer components.Close() //nolint:errcheck

	worker, err := service.NewWorkerService(components.Pipeline, nil, cfg.QueueName, 1, logger)
	if err != nil {
		return fmt.Errorf("worker initialization failed: %w", err)
	}
	worker.SetMetrics(components.Metrics)

	logger.Info("notification dispatcher lambda started", zap.String("emailProvider", cfg.EmailProvider))
	start(queue.SQSHandler(worker.HandleMessage, logger))
	return nil
}
