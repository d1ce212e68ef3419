package queue

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/kursadbilgin/notification-dispatcher/internal/domain"
	"go.uber.org/zap"
)

// SQSHandler adapts handler to the Lambda SQS event source. Every failed record,
// malformed ones included, is reported as a batch item failure so the queue's
// redrive policy moves it to its dead-letter queue.
func SQSHandler(handler MessageHandler, logger *zap.Logger) func(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
		response := events.SQSEventResponse{}

		for _, record := range event.Records {
			msg := Message{
				ID:   record.MessageId,
				Body: []byte(record.Body),
			}
			if attr, ok := record.MessageAttributes["CorrelationId"]; ok && attr.StringValue != nil {
				msg.CorrelationID = *attr.StringValue
			}

			err := handler(ctx, msg)
			if err == nil {
				continue
			}

			if errors.Is(err, domain.ErrMalformedInput) {
				logger.Warn("malformed SQS message",
					zap.String("messageId", record.MessageId),
					zap.Error(err),
				)
			} else {
				logger.Error("notification run failed",
					zap.String("messageId", record.MessageId),
					zap.Error(err),
				)
			}
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}

		return response, nil
	}
}
