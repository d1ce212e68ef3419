package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/notification-dispatcher/internal/app"
	"github.com/kursadbilgin/notification-dispatcher/internal/handler"
	"github.com/kursadbilgin/notification-dispatcher/internal/queue"
	"github.com/kursadbilgin/notification-dispatcher/internal/service"
	"github.com/kursadbilgin/notification-dispatcher/internal/transport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Consume notification ids from RabbitMQ and send the emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireBroker(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			components, err := app.NewComponents(runCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Close() //nolint:errcheck

			broker, err := queue.NewRabbitMQ(cfg.RabbitMQURL, cfg.QueueName)
			if err != nil {
				return fmt.Errorf("rabbitmq initialization failed: %w", err)
			}
			consumer := queue.NewRabbitMQConsumer(broker, cfg.QueuePrefetch, logger)
			defer consumer.Close() //nolint:errcheck

			worker, err := service.NewWorkerService(components.Pipeline, consumer, cfg.QueueName, cfg.WorkerConcurrency, logger)
			if err != nil {
				return err
			}
			worker.SetMetrics(components.Metrics)

			server := fiber.New(fiber.Config{
				DisableStartupMessage: true,
				ErrorHandler:          transport.ErrorHandler(logger),
			})
			server.Use(components.Metrics.HTTPMiddleware())
			handler.RegisterHealthRoutes(server, components.SQLDB, broker)
			handler.RegisterMetricsRoute(server, components.Metrics)

			logger.Info("notification dispatcher started",
				zap.String("queue", cfg.QueueName),
				zap.String("emailProvider", cfg.EmailProvider),
				zap.Int("workers", cfg.WorkerConcurrency),
				zap.Int("port", cfg.HTTPPort),
			)

			g, groupCtx := errgroup.WithContext(runCtx)
			g.Go(func() error {
				return server.Listen(fmt.Sprintf(":%d", cfg.HTTPPort))
			})
			g.Go(func() error {
				return worker.Start(groupCtx)
			})
			g.Go(func() error {
				<-groupCtx.Done()
				return server.ShutdownWithTimeout(shutdownTimeout)
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			logger.Info("notification dispatcher stopped")
			return nil
		},
	}
}
