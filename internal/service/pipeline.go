package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/notification-dispatcher/internal/domain"
	"github.com/kursadbilgin/notification-dispatcher/internal/observability"
	"github.com/kursadbilgin/notification-dispatcher/internal/provider"
	"github.com/kursadbilgin/notification-dispatcher/internal/repository"
	"go.uber.org/zap"
)

// Runner executes one notification run.
type Runner interface {
	Run(ctx context.Context, notificationID int64) (domain.Outcome, error)
}

var _ Runner = (*NotificationPipeline)(nil)

// NotificationPipeline fetches a notification and the attendee list, sends one
// email per attendee, and stores the success count with the completion time.
type NotificationPipeline struct {
	store  repository.Store
	sender provider.EmailSender
	logger *zap.Logger
	now    func() time.Time
}

func NewNotificationPipeline(store repository.Store, sender provider.EmailSender, logger *zap.Logger) (*NotificationPipeline, error) {
	if store == nil {
		return nil, fmt.Errorf("notification store is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NotificationPipeline{
		store:  store,
		sender: sender,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Run performs one run for notificationID. Store failures abort the run and
// are returned as *domain.RunError; a failed send only lowers the tally.
//
// When persisting fails the emails have already gone out. The partial outcome
// is returned with the error and nothing is compensated.
func (p *NotificationPipeline) Run(ctx context.Context, notificationID int64) (domain.Outcome, error) {
	logger := observability.WithContextLogger(p.logger, ctx).With(zap.Int64("notificationId", notificationID))
	outcome := domain.Outcome{NotificationID: notificationID}

	conn, err := p.store.Acquire(ctx)
	if err != nil {
		return outcome, p.abort(logger, notificationID, domain.StepAcquireConnection, err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("failed to release store connection", zap.Error(closeErr))
			return
		}
		logger.Debug("store connection released")
	}()

	notification, err := conn.FetchNotification(ctx, notificationID)
	if err != nil {
		return outcome, p.abort(logger, notificationID, domain.StepFetchNotification, err)
	}
	if notification.IsCompleted() {
		logger.Warn("notification already completed, sending again",
			zap.Int("previousStatus", *notification.Status),
			zap.Time("previousCompletedAt", *notification.CompletedAt),
		)
	}

	recipients, err := conn.FetchAllRecipients(ctx)
	if err != nil {
		return outcome, p.abort(logger, notificationID, domain.StepFetchRecipients, err)
	}

	for _, recipient := range recipients {
		logger.Info("sending notification to attendee",
			zap.String("attendee", recipient.FullName()),
			zap.String("recipient", recipient.Email),
		)

		outcome.Attempted++
		if p.sender.Send(ctx, recipient.Email, notification.Subject, notification.Message) {
			outcome.Succeeded++
		}
	}

	completedAt := p.now().UTC()
	if err := conn.PersistOutcome(ctx, notificationID, outcome.Succeeded, completedAt); err != nil {
		logger.Error("emails sent but outcome was not stored",
			zap.Int("attempted", outcome.Attempted),
			zap.Int("succeeded", outcome.Succeeded),
		)
		return outcome, p.abort(logger, notificationID, domain.StepPersistOutcome, err)
	}
	outcome.CompletedAt = completedAt

	logger.Info("notification run completed",
		zap.Int("attempted", outcome.Attempted),
		zap.Int("succeeded", outcome.Succeeded),
		zap.Int("failed", outcome.Failed()),
	)

	return outcome, nil
}

func (p *NotificationPipeline) abort(logger *zap.Logger, notificationID int64, step domain.Step, err error) error {
	logger.Error("notification run aborted",
		zap.String("step", string(step)),
		zap.Error(err),
	)

	return &domain.RunError{NotificationID: notificationID, Step: step, Err: err}
}
