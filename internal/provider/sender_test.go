package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/kursadbilgin/notification-dispatcher/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProvider struct {
	calls  int
	sendFn func(ctx context.Context, email Email) (*ProviderResponse, error)
}

func (f *fakeProvider) Send(ctx context.Context, email Email) (*ProviderResponse, error) {
	f.calls++
	if f.sendFn != nil {
		return f.sendFn(ctx, email)
	}
	return &ProviderResponse{StatusCode: 202}, nil
}

func TestSenderSendSuccess(t *testing.T) {
	t.Parallel()

	var got Email
	p := &fakeProvider{
		sendFn: func(ctx context.Context, email Email) (*ProviderResponse, error) {
			got = email
			return &ProviderResponse{StatusCode: 202, MessageID: "m-1"}, nil
		},
	}

	core, recorded := observer.New(zapcore.InfoLevel)
	sender, err := NewSender(p, Address{Email: "events@example.com"}, zap.New(core))
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	if ok := sender.Send(context.Background(), "ada@example.com", "Reminder", "See you there"); !ok {
		t.Fatal("Send() = false, want true")
	}

	if got.From.Email != "events@example.com" || got.To != "ada@example.com" || got.Subject != "Reminder" || got.PlainText != "See you there" {
		t.Fatalf("email = %+v, unexpected fields", got)
	}

	entries := recorded.FilterMessage("email sent").All()
	if len(entries) != 1 {
		t.Fatalf("email sent entries = %d, want 1", len(entries))
	}
	if entries[0].ContextMap()["providerMessageId"] != "m-1" {
		t.Fatalf("providerMessageId = %v, want m-1", entries[0].ContextMap()["providerMessageId"])
	}
}

func TestSenderSendProviderError(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		sendFn: func(ctx context.Context, email Email) (*ProviderResponse, error) {
			return nil, &ProviderError{Provider: "sendgrid", StatusCode: 401, Message: "unauthorized"}
		},
	}

	core, recorded := observer.New(zapcore.InfoLevel)
	sender, err := NewSender(p, Address{Email: "events@example.com"}, zap.New(core))
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}
	metrics := observability.NewMetrics()
	sender.SetMetrics(metrics)

	if ok := sender.Send(context.Background(), "ada@example.com", "Reminder", "body"); ok {
		t.Fatal("Send() = true, want false")
	}
	if p.calls != 1 {
		t.Fatalf("provider calls = %d, want 1 (no retry)", p.calls)
	}

	entries := recorded.FilterMessage("email send failed").All()
	if len(entries) != 1 {
		t.Fatalf("email send failed entries = %d, want 1", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("level = %s, want warn", entries[0].Level)
	}

	if got := testutil.ToFloat64(metrics.EmailsTotal(observability.EmailResultFailed)); got != 1 {
		t.Fatalf("emails_total{result=failed} = %v, want 1", got)
	}
}

func TestSenderSendRecoversPanic(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		sendFn: func(ctx context.Context, email Email) (*ProviderResponse, error) {
			panic("nil pointer in provider")
		},
	}

	core, recorded := observer.New(zapcore.InfoLevel)
	sender, err := NewSender(p, Address{Email: "events@example.com"}, zap.New(core))
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	if ok := sender.Send(context.Background(), "ada@example.com", "Reminder", "body"); ok {
		t.Fatal("Send() = true, want false")
	}
	if n := recorded.FilterMessage("email send panicked").Len(); n != 1 {
		t.Fatalf("panic entries = %d, want 1", n)
	}
}

func TestSenderSendContextCanceled(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		sendFn: func(ctx context.Context, email Email) (*ProviderResponse, error) {
			return nil, ctx.Err()
		},
	}

	sender, err := NewSender(p, Address{Email: "events@example.com"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if ok := sender.Send(ctx, "ada@example.com", "Reminder", "body"); ok {
		t.Fatal("Send() = true, want false")
	}
}

func TestNewSenderValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewSender(nil, Address{Email: "events@example.com"}, nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
	if _, err := NewSender(&fakeProvider{}, Address{}, nil); err == nil {
		t.Fatal("expected error for empty sender address")
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	if IsTransient(nil) {
		t.Fatal("nil error should not be transient")
	}
	if IsTransient(context.Canceled) {
		t.Fatal("canceled should not be transient")
	}
	if !IsTransient(context.DeadlineExceeded) {
		t.Fatal("deadline exceeded should be transient")
	}
	if !IsTransient(&ProviderError{Transient: true}) {
		t.Fatal("transient provider error should be transient")
	}
	if IsTransient(errors.New("plain")) {
		t.Fatal("plain error should not be transient")
	}
}
