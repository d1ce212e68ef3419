package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kursadbilgin/notification-dispatcher/internal/domain"
	"gorm.io/gorm"
)

// Store hands out connections scoped to a single notification run.
type Store interface {
	Acquire(ctx context.Context) (Conn, error)
}

// Conn is a dedicated store connection. Close must be called on every exit path.
type Conn interface {
	FetchNotification(ctx context.Context, id int64) (*domain.Notification, error)
	FetchAllRecipients(ctx context.Context) ([]domain.Recipient, error)
	PersistOutcome(ctx context.Context, id int64, succeeded int, completedAt time.Time) error
	Close() error
}

var (
	_ Store = (*GormNotificationStore)(nil)
	_ Conn  = (*gormConn)(nil)
)

type GormNotificationStore struct {
	db *gorm.DB
}

func NewGormNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

// Acquire pins one pooled connection, the same way gorm's DB.Connection does,
// so every statement of a run goes over it.
func (s *GormNotificationStore) Acquire(ctx context.Context) (Conn, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("%w: store is not initialized", domain.ErrStoreUnavailable)
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to acquire connection: %v", domain.ErrStoreUnavailable, err)
	}

	tx := s.db.WithContext(ctx)
	tx.Statement.ConnPool = conn

	return &gormConn{db: tx, closeFn: conn.Close}, nil
}

type gormConn struct {
	db *gorm.DB

	closeOnce sync.Once
	closeFn   func() error
	closeErr  error
}

func (c *gormConn) FetchNotification(ctx context.Context, id int64) (*domain.Notification, error) {
	var model NotificationModel
	err := c.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: notification %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, storeUnavailable("fetch notification", err)
	}

	return notificationModelToDomain(&model), nil
}

func (c *gormConn) FetchAllRecipients(ctx context.Context) ([]domain.Recipient, error) {
	var models []AttendeeModel
	if err := c.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, storeUnavailable("fetch attendees", err)
	}

	recipients := make([]domain.Recipient, 0, len(models))
	for i := range models {
		recipients = append(recipients, attendeeModelToDomain(&models[i]))
	}

	return recipients, nil
}

// PersistOutcome writes status and completed_date in one committed update.
func (c *gormConn) PersistOutcome(ctx context.Context, id int64, succeeded int, completedAt time.Time) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&NotificationModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":         succeeded,
				"completed_date": completedAt,
			})
		if result.Error != nil {
			return storeUnavailable("update notification", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: notification %d", domain.ErrNotFound, id)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}

	return storeUnavailable("commit notification outcome", err)
}

func (c *gormConn) Close() error {
	c.closeOnce.Do(func() {
		if c.closeFn != nil {
			c.closeErr = c.closeFn()
		}
	})
	return c.closeErr
}

func storeUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
