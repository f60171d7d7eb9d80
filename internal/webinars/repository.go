package webinars

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketing-hub/autowebinar/internal/models"
	"github.com/marketing-hub/autowebinar/internal/schedule"
)

// Repository handles webinar persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a webinars repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const webinarColumns = `id, title, description, thumbnail_url, video_url, video_type,
	video_duration_seconds, video_s3_key, status, schedule_type, just_in_time_delay_minutes,
	recurring_schedule, specific_dates, replay_enabled, replay_expires_hours,
	min_attendees, max_attendees, peak_progress, variance_percent, attendee_seed,
	created_by, created_at, updated_at`

func scanWebinar(row pgx.Row) (*models.Webinar, error) {
	var w models.Webinar
	var recurring, specificDates []byte
	err := row.Scan(
		&w.ID, &w.Title, &w.Description, &w.ThumbnailURL, &w.VideoURL, &w.VideoType,
		&w.VideoDurationSeconds, &w.VideoS3Key, &w.Status, &w.ScheduleType, &w.JustInTimeDelayMinutes,
		&recurring, &specificDates, &w.ReplayEnabled, &w.ReplayExpiresHours,
		&w.MinAttendees, &w.MaxAttendees, &w.PeakProgress, &w.VariancePercent, &w.AttendeeSeed,
		&w.CreatedBy, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(recurring) > 0 {
		var rs schedule.RecurringSchedule
		if err := json.Unmarshal(recurring, &rs); err != nil {
			return nil, fmt.Errorf("decode recurring_schedule: %w", err)
		}
		w.RecurringSchedule = &rs
	}
	if len(specificDates) > 0 {
		if err := json.Unmarshal(specificDates, &w.SpecificDates); err != nil {
			return nil, fmt.Errorf("decode specific_dates: %w", err)
		}
	}
	return &w, nil
}

func encodeSchedule(w *models.Webinar) (recurring, specificDates []byte, err error) {
	if w.RecurringSchedule != nil {
		recurring, err = json.Marshal(w.RecurringSchedule)
		if err != nil {
			return nil, nil, fmt.Errorf("encode recurring_schedule: %w", err)
		}
	}
	if len(w.SpecificDates) > 0 {
		specificDates, err = json.Marshal(w.SpecificDates)
		if err != nil {
			return nil, nil, fmt.Errorf("encode specific_dates: %w", err)
		}
	}
	return recurring, specificDates, nil
}

// Create inserts a webinar.
func (r *Repository) Create(ctx context.Context, w *models.Webinar) error {
	recurring, specificDates, err := encodeSchedule(w)
	if err != nil {
		return err
	}
	const q = `INSERT INTO webinars (
			title, description, thumbnail_url, video_url, video_type, video_duration_seconds,
			video_s3_key, status, schedule_type, just_in_time_delay_minutes, recurring_schedule,
			specific_dates, replay_enabled, replay_expires_hours, min_attendees, max_attendees,
			peak_progress, variance_percent, attendee_seed, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		w.Title, w.Description, w.ThumbnailURL, w.VideoURL, w.VideoType, w.VideoDurationSeconds,
		w.VideoS3Key, w.Status, w.ScheduleType, w.JustInTimeDelayMinutes, recurring,
		specificDates, w.ReplayEnabled, w.ReplayExpiresHours, w.MinAttendees, w.MaxAttendees,
		w.PeakProgress, w.VariancePercent, w.AttendeeSeed, w.CreatedBy,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

// GetByID returns a webinar or nil when not found.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Webinar, error) {
	w, err := scanWebinar(r.pool.QueryRow(ctx, `SELECT `+webinarColumns+` FROM webinars WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return w, err
}

// List returns all webinars, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Webinar, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+webinarColumns+` FROM webinars ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Webinar
	for rows.Next() {
		w, err := scanWebinar(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *w)
	}
	return list, rows.Err()
}

// Update persists editable fields of a webinar.
func (r *Repository) Update(ctx context.Context, w *models.Webinar) error {
	recurring, specificDates, err := encodeSchedule(w)
	if err != nil {
		return err
	}
	const q = `UPDATE webinars SET
			title=$2, description=$3, thumbnail_url=$4, video_url=$5, video_type=$6,
			video_duration_seconds=$7, video_s3_key=$8, status=$9, schedule_type=$10,
			just_in_time_delay_minutes=$11, recurring_schedule=$12, specific_dates=$13,
			replay_enabled=$14, replay_expires_hours=$15, min_attendees=$16, max_attendees=$17,
			peak_progress=$18, variance_percent=$19, attendee_seed=$20, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q,
		w.ID, w.Title, w.Description, w.ThumbnailURL, w.VideoURL, w.VideoType,
		w.VideoDurationSeconds, w.VideoS3Key, w.Status, w.ScheduleType,
		w.JustInTimeDelayMinutes, recurring, specificDates,
		w.ReplayEnabled, w.ReplayExpiresHours, w.MinAttendees, w.MaxAttendees,
		w.PeakProgress, w.VariancePercent, w.AttendeeSeed,
	).Scan(&w.UpdatedAt)
}

// Delete removes a webinar and all dependent rows (FK cascade).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM webinars WHERE id = $1`, id)
	return err
}

// SetStatus changes only the publishing status.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.WebinarStatus) error {
	_, err := r.pool.Exec(ctx, `UPDATE webinars SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}
