package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketing-hub/autowebinar/internal/models"
)

// DueBatchSize caps how many due notifications one dispatcher pass sends.
const DueBatchSize = 100

// Repository handles notification settings and the scheduled send queue.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetSettings returns a webinar's notification settings, falling back to the
// defaults when no row was saved yet.
func (r *Repository) GetSettings(ctx context.Context, webinarID uuid.UUID) (models.NotificationSettings, error) {
	var s models.NotificationSettings
	err := r.pool.QueryRow(ctx,
		`SELECT webinar_id, is_enabled, reminder_30min, reminder_5min, reminder_1min,
		        starting_now, replay_available, replay_expiring, replay_expiring_hours, updated_at
		 FROM notification_settings WHERE webinar_id = $1`, webinarID).
		Scan(&s.WebinarID, &s.IsEnabled, &s.Reminder30Min, &s.Reminder5Min, &s.Reminder1Min,
			&s.StartingNow, &s.ReplayAvailable, &s.ReplayExpiring, &s.ReplayExpiringHours, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultNotificationSettings(webinarID), nil
	}
	if err != nil {
		return models.NotificationSettings{}, err
	}
	return s, nil
}

// UpsertSettings saves a webinar's notification settings.
func (r *Repository) UpsertSettings(ctx context.Context, s *models.NotificationSettings) error {
	const q = `INSERT INTO notification_settings
		(webinar_id, is_enabled, reminder_30min, reminder_5min, reminder_1min,
		 starting_now, replay_available, replay_expiring, replay_expiring_hours)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (webinar_id) DO UPDATE SET
		 is_enabled = EXCLUDED.is_enabled,
		 reminder_30min = EXCLUDED.reminder_30min,
		 reminder_5min = EXCLUDED.reminder_5min,
		 reminder_1min = EXCLUDED.reminder_1min,
		 starting_now = EXCLUDED.starting_now,
		 replay_available = EXCLUDED.replay_available,
		 replay_expiring = EXCLUDED.replay_expiring,
		 replay_expiring_hours = EXCLUDED.replay_expiring_hours,
		 updated_at = NOW()
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, s.WebinarID, s.IsEnabled, s.Reminder30Min, s.Reminder5Min,
		s.Reminder1Min, s.StartingNow, s.ReplayAvailable, s.ReplayExpiring, s.ReplayExpiringHours).
		Scan(&s.UpdatedAt)
}

// Schedule inserts a batch of planned notifications for one registration.
func (r *Repository) Schedule(ctx context.Context, webinarID, registrationID uuid.UUID, planned []Planned) error {
	for _, p := range planned {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO scheduled_notifications (webinar_id, registration_id, notification_type, scheduled_at)
			 VALUES ($1,$2,$3,$4)`,
			webinarID, registrationID, p.Type, p.ScheduledAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// DueItem is a due notification joined with everything the dispatcher needs
// to render and address the email.
type DueItem struct {
	Notification models.ScheduledNotification
	Email        string
	FullName     string
	WebinarTitle string
}

// Due returns up to DueBatchSize notifications whose send time has arrived.
func (r *Repository) Due(ctx context.Context, now time.Time) ([]DueItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT n.id, n.webinar_id, n.registration_id, n.notification_type, n.scheduled_at,
		        n.status, n.created_at, reg.email, reg.full_name, w.title
		 FROM scheduled_notifications n
		 JOIN registrations reg ON reg.id = n.registration_id
		 JOIN webinars w ON w.id = n.webinar_id
		 WHERE n.status = $1 AND n.scheduled_at <= $2
		 ORDER BY n.scheduled_at
		 LIMIT $3`,
		models.NotificationScheduled, now, DueBatchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DueItem
	for rows.Next() {
		var it DueItem
		n := &it.Notification
		if err := rows.Scan(&n.ID, &n.WebinarID, &n.RegistrationID, &n.Type, &n.ScheduledAt,
			&n.Status, &n.CreatedAt, &it.Email, &it.FullName, &it.WebinarTitle); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkSent records a successful send.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scheduled_notifications SET status = $2, sent_at = $3 WHERE id = $1`,
		id, models.NotificationSent, at)
	return err
}

// MarkFailed records a failed send with its error.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, at time.Time, message string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scheduled_notifications SET status = $2, failed_at = $3, error_message = $4 WHERE id = $1`,
		id, models.NotificationFailed, at, message)
	return err
}

// CancelForRegistration cancels the registration's pending notifications,
// used when a registration is withdrawn or rescheduled.
func (r *Repository) CancelForRegistration(ctx context.Context, registrationID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE scheduled_notifications SET status = $2
		 WHERE registration_id = $1 AND status = $3`,
		registrationID, models.NotificationCancelled, models.NotificationScheduled)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
