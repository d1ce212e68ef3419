package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/notification-dispatcher/internal/domain"
	"github.com/kursadbilgin/notification-dispatcher/internal/queue"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const publishTimeout = 15 * time.Second

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <notification-id>...",
		Short: "Publish notification ids to the notification queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseNotificationIDs(args)
			if err != nil {
				return err
			}

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

			broker, err := queue.NewRabbitMQ(cfg.RabbitMQURL, cfg.QueueName)
			if err != nil {
				return fmt.Errorf("rabbitmq initialization failed: %w", err)
			}
			publisher := queue.NewRabbitMQPublisher(broker)
			defer publisher.Close() //nolint:errcheck

			publishCtx, cancel := context.WithTimeout(cmd.Context(), publishTimeout)
			defer cancel()

			for _, id := range ids {
				if err := publisher.Publish(publishCtx, cfg.QueueName, id); err != nil {
					return err
				}
				logger.Info("notification enqueued",
					zap.Int64("notificationId", id),
					zap.String("queue", cfg.QueueName),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "Enqueued notification %d on %s\n", id, cfg.QueueName)
			}

			return nil
		},
	}
}

func parseNotificationIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := domain.ParseNotificationID([]byte(arg))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
