package service

import (
	"context"
	"sync"
	"time"

	"github.com/kursadbilgin/notification-dispatcher/internal/domain"
	"github.com/kursadbilgin/notification-dispatcher/internal/queue"
	"github.com/kursadbilgin/notification-dispatcher/internal/repository"
)

type persistCall struct {
	notificationID int64
	succeeded      int
	completedAt    time.Time
}

type fakeStore struct {
	acquireErr error
	conn       *fakeConn
	acquires   int
}

func (s *fakeStore) Acquire(ctx context.Context) (repository.Conn, error) {
	s.acquires++
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	return s.conn, nil
}

type fakeConn struct {
	fetchNotificationFn  func(ctx context.Context, id int64) (*domain.Notification, error)
	fetchAllRecipientsFn func(ctx context.Context) ([]domain.Recipient, error)
	persistOutcomeFn     func(ctx context.Context, id int64, succeeded int, completedAt time.Time) error

	persisted  []persistCall
	closeCalls int
}

func (c *fakeConn) FetchNotification(ctx context.Context, id int64) (*domain.Notification, error) {
	return c.fetchNotificationFn(ctx, id)
}

func (c *fakeConn) FetchAllRecipients(ctx context.Context) ([]domain.Recipient, error) {
	return c.fetchAllRecipientsFn(ctx)
}

func (c *fakeConn) PersistOutcome(ctx context.Context, id int64, succeeded int, completedAt time.Time) error {
	c.persisted = append(c.persisted, persistCall{
		notificationID: id,
		succeeded:      succeeded,
		completedAt:    completedAt,
	})
	if c.persistOutcomeFn == nil {
		return nil
	}
	return c.persistOutcomeFn(ctx, id, succeeded, completedAt)
}

func (c *fakeConn) Close() error {
	c.closeCalls++
	return nil
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	sendFn func(ctx context.Context, to string) bool
	sent   []sentEmail
}

func (s *fakeSender) Send(ctx context.Context, toEmail string, subject string, body string) bool {
	s.sent = append(s.sent, sentEmail{to: toEmail, subject: subject, body: body})
	if s.sendFn == nil {
		return true
	}
	return s.sendFn(ctx, toEmail)
}

type fakeRunner struct {
	runFn func(ctx context.Context, id int64) (domain.Outcome, error)
	calls []int64
}

func (r *fakeRunner) Run(ctx context.Context, id int64) (domain.Outcome, error) {
	r.calls = append(r.calls, id)
	return r.runFn(ctx, id)
}

type fakeConsumer struct {
	mu        sync.Mutex
	queues    []string
	consumeFn func(ctx context.Context, queueName string, handler queue.MessageHandler) error
}

func (c *fakeConsumer) Consume(ctx context.Context, queueName string, handler queue.MessageHandler) error {
	c.mu.Lock()
	c.queues = append(c.queues, queueName)
	c.mu.Unlock()

	if c.consumeFn == nil {
		<-ctx.Done()
		return nil
	}
	return c.consumeFn(ctx, queueName, handler)
}

func (c *fakeConsumer) Close() error {
	return nil
}

func notificationFixture(id int64) *domain.Notification {
	return &domain.Notification{ID: id, Subject: "Reminder", Message: "See you there"}
}

func recipientsFixture(n int) []domain.Recipient {
	all := []domain.Recipient{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
		{FirstName: "Edsger", LastName: "Dijkstra", Email: "edsger@example.com"},
		{FirstName: "Barbara", LastName: "Liskov", Email: "barbara@example.com"},
	}
	return all[:n]
}

func newFakeConn(notification *domain.Notification, recipients []domain.Recipient) *fakeConn {
	return &fakeConn{
		fetchNotificationFn: func(ctx context.Context, id int64) (*domain.Notification, error) {
			return notification, nil
		},
		fetchAllRecipientsFn: func(ctx context.Context) ([]domain.Recipient, error) {
			return recipients, nil
		},
	}
}
