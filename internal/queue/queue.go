package queue

import (
	"context"
	"fmt"
	"strings"
)

// Message is one trigger delivery as seen by the notification worker.
type Message struct {
	ID            string
	CorrelationID string
	Body          []byte
}

// MessageHandler handles a consumed queue message. A non-nil error marks the
// delivery as failed.
type MessageHandler func(ctx context.Context, msg Message) error

// Consumer consumes notification messages from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

// Publisher enqueues notification ids.
type Publisher interface {
	Publish(ctx context.Context, queue string, notificationID int64) error
	Close() error
}

const dlqPrefix = "dlq."

// DLQName returns the dead-letter queue for a work queue, e.g. dlq.notificationqueue.
func DLQName(queue string) string {
	return fmt.Sprintf("%s%s", dlqPrefix, strings.TrimSpace(queue))
}

// EncodeNotificationID renders an id the way the trigger expects it in a message body.
func EncodeNotificationID(id int64) []byte {
	return []byte(fmt.Sprintf("%d", id))
}
