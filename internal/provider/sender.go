package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/notification-dispatcher/internal/domain"
	"github.com/kursadbilgin/notification-dispatcher/internal/observability"
	"go.uber.org/zap"
)

// EmailSender sends exactly one email per call and reports whether the provider accepted it.
type EmailSender interface {
	Send(ctx context.Context, toEmail string, subject string, body string) bool
}

var _ EmailSender = (*Sender)(nil)

// Sender adapts an EmailProvider to EmailSender. Provider errors and panics
// are logged and reported as false; nothing is retried.
type Sender struct {
	provider EmailProvider
	from     Address
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewSender(provider EmailProvider, from Address, logger *zap.Logger) (*Sender, error) {
	if provider == nil {
		return nil, fmt.Errorf("email provider is required")
	}
	if from.Email == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sender{
		provider: provider,
		from:     from,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *Sender) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

func (s *Sender) Send(ctx context.Context, toEmail string, subject string, body string) (ok bool) {
	logger := observability.WithContextLogger(s.logger, ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("email send panicked",
				zap.String("recipient", toEmail),
				zap.Error(fmt.Errorf("%w: panic: %v", domain.ErrSendFailed, r)),
			)
			s.metrics.IncEmail(observability.EmailResultFailed)
			ok = false
		}
	}()

	start := s.now()
	resp, err := s.provider.Send(ctx, Email{
		From:      s.from,
		To:        toEmail,
		Subject:   subject,
		PlainText: body,
	})
	s.metrics.ObserveEmailSendDuration(s.now().Sub(start))

	if err != nil {
		logger.Warn("email send failed",
			zap.String("recipient", toEmail),
			zap.Bool("transient", IsTransient(err)),
			zap.Error(fmt.Errorf("%w: %w", domain.ErrSendFailed, err)),
		)
		s.metrics.IncEmail(observability.EmailResultFailed)
		return false
	}

	fields := []zap.Field{zap.String("recipient", toEmail)}
	if resp != nil && resp.MessageID != "" {
		fields = append(fields, zap.String("providerMessageId", resp.MessageID))
	}
	logger.Info("email sent", fields...)
	s.metrics.IncEmail(observability.EmailResultSent)

	return true
}
