package app

import (
	"context"
	"database/sql"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/kursadbilgin/notification-dispatcher/internal/config"
	"github.com/kursadbilgin/notification-dispatcher/internal/infra/postgresql"
	"github.com/kursadbilgin/notification-dispatcher/internal/observability"
	"github.com/kursadbilgin/notification-dispatcher/internal/provider"
	"github.com/kursadbilgin/notification-dispatcher/internal/repository"
	"github.com/kursadbilgin/notification-dispatcher/internal/service"
	"go.uber.org/zap"
)

// Components holds the wired notification pipeline shared by the queue
// worker and the Lambda entrypoint.
type Components struct {
	SQLDB    *sql.DB
	Pipeline *service.NotificationPipeline
	Metrics  *observability.Metrics
}

func NewComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres underlying db init failed: %w", err)
	}

	emailProvider, err := NewEmailProvider(ctx, cfg)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	metrics := observability.NewMetrics()

	sender, err := provider.NewSender(emailProvider, provider.Address{
		Email: cfg.EmailFromAddress,
		Name:  cfg.EmailFromName,
	}, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	sender.SetMetrics(metrics)

	pipeline, err := service.NewNotificationPipeline(repository.NewGormNotificationStore(db), sender, logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &Components{
		SQLDB:    sqlDB,
		Pipeline: pipeline,
		Metrics:  metrics,
	}, nil
}

func (c *Components) Close() error {
	if c == nil || c.SQLDB == nil {
		return nil
	}
	return c.SQLDB.Close()
}

// NewEmailProvider returns the provider selected by EMAIL_PROVIDER.
func NewEmailProvider(ctx context.Context, cfg *config.Config) (provider.EmailProvider, error) {
	switch cfg.EmailProvider {
	case config.EmailProviderSendGrid:
		sendGrid, err := provider.NewSendGridProvider(cfg.SendGridBaseURL, cfg.SendGridAPIKey)
		if err != nil {
			return nil, err
		}
		return sendGrid, nil
	case config.EmailProviderSES:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		return provider.NewSESProvider(awsCfg, cfg.SESConfigurationSet), nil
	case config.EmailProviderWebhook:
		webhook, err := provider.NewWebhookProvider(cfg.EmailWebhookURL)
		if err != nil {
			return nil, err
		}
		return webhook, nil
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.EmailProvider)
	}
}
