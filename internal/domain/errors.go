package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrSendFailed       = errors.New("send failed")
	ErrMalformedInput   = errors.New("malformed input")
)

// Step names the pipeline stage where a run aborted.
type Step string

const (
	StepParseMessage      Step = "parse_message"
	StepAcquireConnection Step = "acquire_connection"
	StepFetchNotification Step = "fetch_notification"
	StepFetchRecipients   Step = "fetch_recipients"
	StepPersistOutcome    Step = "persist_outcome"
)

func (s Step) String() string { return string(s) }

// RunError is returned when a notification run aborts.
type RunError struct {
	NotificationID int64
	Step           Step
	Err            error
}

func (e *RunError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("notification %d: %s: %v", e.NotificationID, e.Step, e.Err)
}

func (e *RunError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
