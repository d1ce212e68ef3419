package repository

import (
	"time"

	"github.com/kursadbilgin/notification-dispatcher/internal/domain"
)

// NotificationModel is the persistence model for the notification table.
type NotificationModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	Subject       string     `gorm:"column:subject;type:text"`
	Message       string     `gorm:"column:message;type:text"`
	Status        *int       `gorm:"column:status"`
	CompletedDate *time.Time `gorm:"column:completed_date"`
}

func (NotificationModel) TableName() string {
	return "notification"
}

// AttendeeModel is the persistence model for the attendee table.
type AttendeeModel struct {
	FirstName string `gorm:"column:first_name"`
	LastName  string `gorm:"column:last_name"`
	Email     string `gorm:"column:email"`
}

func (AttendeeModel) TableName() string {
	return "attendee"
}

func notificationModelToDomain(m *NotificationModel) *domain.Notification {
	if m == nil {
		return nil
	}

	return &domain.Notification{
		ID:          m.ID,
		Subject:     m.Subject,
		Message:     m.Message,
		Status:      m.Status,
		CompletedAt: m.CompletedDate,
	}
}

func attendeeModelToDomain(m *AttendeeModel) domain.Recipient {
	return domain.Recipient{
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
	}
}
