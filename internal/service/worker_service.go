package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/notification-dispatcher/internal/domain"
	"github.com/kursadbilgin/notification-dispatcher/internal/observability"
	"github.com/kursadbilgin/notification-dispatcher/internal/queue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const minWorkerConcurrency = 1

// WorkerService turns queue deliveries into notification runs.
type WorkerService struct {
	runner           Runner
	consumer         queue.Consumer
	queueName        string
	concurrency      int
	logger           *zap.Logger
	metrics          *observability.Metrics
	now              func() time.Time
	newCorrelationID func() string
}

func NewWorkerService(
	runner Runner,
	consumer queue.Consumer,
	queueName string,
	concurrency int,
	logger *zap.Logger,
) (*WorkerService, error) {
	if runner == nil {
		return nil, fmt.Errorf("notification runner is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WorkerService{
		runner:           runner,
		consumer:         consumer,
		queueName:        strings.TrimSpace(queueName),
		concurrency:      concurrency,
		logger:           logger,
		now:              time.Now,
		newCorrelationID: uuid.NewString,
	}, nil
}

func (s *WorkerService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Start consumes the notification queue until context cancellation.
func (s *WorkerService) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.consumer == nil {
		return fmt.Errorf("queue consumer is not configured")
	}
	if s.queueName == "" {
		return fmt.Errorf("queue name is required")
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			s.logger.Info("worker started",
				zap.Int("workerId", workerID),
				zap.String("queue", s.queueName),
			)

			err := s.consumer.Consume(groupCtx, s.queueName, s.HandleMessage)
			if err != nil {
				s.logger.Error("worker stopped with error",
					zap.Int("workerId", workerID),
					zap.String("queue", s.queueName),
					zap.Error(err),
				)
				return err
			}

			s.logger.Info("worker stopped",
				zap.Int("workerId", workerID),
				zap.String("queue", s.queueName),
			)
			return nil
		})
	}

	return g.Wait()
}

// HandleMessage runs the pipeline for the notification id carried in msg.
// Malformed bodies fail before the store is touched. Cancelling ctx does not
// interrupt a run once it has started.
func (s *WorkerService) HandleMessage(ctx context.Context, msg queue.Message) error {
	correlationID := strings.TrimSpace(msg.CorrelationID)
	if correlationID == "" {
		correlationID = s.newCorrelationID()
	}
	ctx = observability.WithCorrelationID(ctx, correlationID)
	logger := observability.WithContextLogger(s.logger, ctx)

	notificationID, err := domain.ParseNotificationID(msg.Body)
	if err != nil {
		logger.Warn("discarding queue message",
			zap.String("messageId", msg.ID),
			zap.String("step", string(domain.StepParseMessage)),
			zap.Error(err),
		)
		s.metrics.IncRun(observability.RunResultMalformed)
		return &domain.RunError{Step: domain.StepParseMessage, Err: err}
	}

	s.metrics.IncRunsInFlight()
	defer s.metrics.DecRunsInFlight()

	// A started run finishes even when shutdown cancels ctx; the consumer
	// stops taking deliveries instead.
	start := s.now()
	_, err = s.runner.Run(context.WithoutCancel(ctx), notificationID)
	s.metrics.ObserveRunDuration(s.now().Sub(start))

	if err != nil {
		s.metrics.IncRun(observability.RunResultFailed)

		var runErr *domain.RunError
		if errors.As(err, &runErr) {
			return err
		}
		return &domain.RunError{NotificationID: notificationID, Err: err}
	}

	s.metrics.IncRun(observability.RunResultCompleted)
	return nil
}
