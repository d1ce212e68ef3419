package app

import (
	"context"
	"testing"

	"github.com/kursadbilgin/notification-dispatcher/internal/config"
	"github.com/kursadbilgin/notification-dispatcher/internal/provider"
)

func TestNewEmailProvider(t *testing.T) {
	t.Parallel()

	sendgrid, err := NewEmailProvider(context.Background(), &config.Config{
		EmailProvider:   config.EmailProviderSendGrid,
		SendGridAPIKey:  "SG.test",
		SendGridBaseURL: "https://api.sendgrid.com",
	})
	if err != nil {
		t.Fatalf("NewEmailProvider(sendgrid) error = %v", err)
	}
	if _, ok := sendgrid.(*provider.SendGridProvider); !ok {
		t.Fatalf("provider = %T, want *provider.SendGridProvider", sendgrid)
	}

	webhook, err := NewEmailProvider(context.Background(), &config.Config{
		EmailProvider:   config.EmailProviderWebhook,
		EmailWebhookURL: "https://webhook.site/abc",
	})
	if err != nil {
		t.Fatalf("NewEmailProvider(webhook) error = %v", err)
	}
	if _, ok := webhook.(*provider.WebhookProvider); !ok {
		t.Fatalf("provider = %T, want *provider.WebhookProvider", webhook)
	}

	if _, err := NewEmailProvider(context.Background(), &config.Config{EmailProvider: "smtp"}); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestNewComponentsRequiresConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewComponents(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestComponentsCloseNil(t *testing.T) {
	t.Parallel()

	var c *Components
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
