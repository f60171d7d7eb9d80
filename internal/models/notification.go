package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType names a scheduled viewer email.
type NotificationType string

const (
	NotifyReminder30Min   NotificationType = "REMINDER_30MIN"
	NotifyReminder5Min    NotificationType = "REMINDER_5MIN"
	NotifyReminder1Min    NotificationType = "REMINDER_1MIN"
	NotifyStartingNow     NotificationType = "STARTING_NOW"
	NotifyReplayAvailable NotificationType = "REPLAY_AVAILABLE"
	NotifyReplayExpiring  NotificationType = "REPLAY_EXPIRING"
)

// NotificationStatus is the delivery state of a scheduled notification.
type NotificationStatus string

const (
	NotificationScheduled NotificationStatus = "SCHEDULED"
	NotificationSent      NotificationStatus = "SENT"
	NotificationFailed    NotificationStatus = "FAILED"
	NotificationCancelled NotificationStatus = "CANCELLED"
)

// NotificationSettings is a webinar's per-type notification configuration.
// A webinar without a settings row uses DefaultNotificationSettings.
type NotificationSettings struct {
	WebinarID           uuid.UUID `json:"webinar_id"`
	IsEnabled           bool      `json:"is_enabled"`
	Reminder30Min       bool      `json:"reminder_30min"`
	Reminder5Min        bool      `json:"reminder_5min"`
	Reminder1Min        bool      `json:"reminder_1min"`
	StartingNow         bool      `json:"starting_now"`
	ReplayAvailable     bool      `json:"replay_available"`
	ReplayExpiring      bool      `json:"replay_expiring"`
	ReplayExpiringHours int       `json:"replay_expiring_hours"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultNotificationSettings returns the configuration used before an admin
// saves one.
func DefaultNotificationSettings(webinarID uuid.UUID) NotificationSettings {
	return NotificationSettings{
		WebinarID:           webinarID,
		IsEnabled:           true,
		Reminder30Min:       true,
		Reminder5Min:        true,
		Reminder1Min:        false,
		StartingNow:         true,
		ReplayAvailable:     true,
		ReplayExpiring:      true,
		ReplayExpiringHours: 24,
	}
}

// ScheduledNotification is one pending or delivered viewer email.
type ScheduledNotification struct {
	ID             uuid.UUID          `json:"id"`
	WebinarID      uuid.UUID          `json:"webinar_id"`
	RegistrationID uuid.UUID          `json:"registration_id"`
	Type           NotificationType   `json:"type"`
	ScheduledAt    time.Time          `json:"scheduled_at"`
	Status         NotificationStatus `json:"status"`
	SentAt         *time.Time         `json:"sent_at,omitempty"`
	FailedAt       *time.Time         `json:"failed_at,omitempty"`
	ErrorMessage   *string            `json:"error_message,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}
