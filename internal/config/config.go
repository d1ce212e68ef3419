package config

import (
	"fmt"
	"strings"

	"github.com/Netflix/go-env"
)

const (
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
	EmailProviderWebhook  = "webhook"
)

type Config struct {
	DatabaseDSN         string `env:"DATABASE_DSN,required=true"`
	DBMaxOpenConns      int    `env:"DB_MAX_OPEN_CONNS,default=10"`
	RabbitMQURL         string `env:"RABBITMQ_URL"`
	QueueName           string `env:"QUEUE_NAME,default=notificationqueue"`
	EmailProvider       string `env:"EMAIL_PROVIDER,default=sendgrid"`
	SendGridAPIKey      string `env:"SENDGRID_API_KEY"`
	SendGridBaseURL     string `env:"SENDGRID_BASE_URL,default=https://api.sendgrid.com"`
	EmailFromAddress    string `env:"EMAIL_FROM_ADDRESS,required=true"`
	EmailFromName       string `env:"EMAIL_FROM_NAME"`
	SESConfigurationSet string `env:"SES_CONFIGURATION_SET"`
	EmailWebhookURL     string `env:"EMAIL_WEBHOOK_URL"`
	WorkerConcurrency   int    `env:"WORKER_CONCURRENCY,default=1"`
	QueuePrefetch       int    `env:"QUEUE_PREFETCH,default=1"`
	HTTPPort            int    `env:"HTTP_PORT,default=8080"`
	LogLevel            string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.EmailProvider = strings.ToLower(strings.TrimSpace(cfg.EmailProvider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.EmailProvider {
	case EmailProviderSendGrid:
		if strings.TrimSpace(c.SendGridAPIKey) == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required when EMAIL_PROVIDER=%s", EmailProviderSendGrid)
		}
	case EmailProviderSES:
	case EmailProviderWebhook:
		if strings.TrimSpace(c.EmailWebhookURL) == "" {
			return fmt.Errorf("EMAIL_WEBHOOK_URL is required when EMAIL_PROVIDER=%s", EmailProviderWebhook)
		}
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.EmailProvider)
	}

	if strings.TrimSpace(c.EmailFromAddress) == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS must not be empty")
	}
	if strings.TrimSpace(c.QueueName) == "" {
		return fmt.Errorf("QUEUE_NAME must not be empty")
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be > 0, got %d", c.WorkerConcurrency)
	}
	if c.QueuePrefetch < 1 {
		return fmt.Errorf("QUEUE_PREFETCH must be > 0, got %d", c.QueuePrefetch)
	}
	if c.DBMaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0, got %d", c.DBMaxOpenConns)
	}

	return nil
}

// RequireBroker fails when the RabbitMQ trigger is used without a broker URL.
func (c *Config) RequireBroker() error {
	if strings.TrimSpace(c.RabbitMQURL) == "" {
		return fmt.Errorf("RABBITMQ_URL is required")
	}
	return nil
}
