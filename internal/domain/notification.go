package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Notification is a stored subject/message pair broadcast to every recipient.
type Notification struct {
	ID          int64
	Subject     string
	Message     string
	Status      *int
	CompletedAt *time.Time
}

// IsCompleted reports whether a previous run already wrote its outcome.
func (n *Notification) IsCompleted() bool {
	return n != nil && n.Status != nil && n.CompletedAt != nil
}

// Recipient is a contact eligible to receive notifications.
type Recipient struct {
	FirstName string
	LastName  string
	Email     string
}

func (r Recipient) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Outcome is the attempted/succeeded tally produced by one pipeline run.
type Outcome struct {
	NotificationID int64
	Attempted      int
	Succeeded      int
	CompletedAt    time.Time
}

func (o Outcome) Failed() int {
	return o.Attempted - o.Succeeded
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseNotificationID decodes a queue message body holding the decimal id of a notification.
func ParseNotificationID(body []byte) (int64, error) {
	trimmed := strings.TrimSpace(string(bytes.TrimPrefix(body, utf8BOM)))
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty message body", ErrMalformedInput)
	}

	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: notification id %q is not an integer", ErrMalformedInput, trimmed)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: notification id must be positive, got %d", ErrMalformedInput, id)
	}

	return id, nil
}
