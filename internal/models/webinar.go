package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketing-hub/autowebinar/internal/playback"
	"github.com/marketing-hub/autowebinar/internal/schedule"
)

// WebinarStatus is the publishing state of an auto-webinar.
type WebinarStatus string

const (
	WebinarDraft    WebinarStatus = "DRAFT"
	WebinarActive   WebinarStatus = "ACTIVE"
	WebinarPaused   WebinarStatus = "PAUSED"
	WebinarArchived WebinarStatus = "ARCHIVED"
)

// Webinar is a simulated-live webinar configuration: the video, the schedule
// policy, and the attendee-simulation curve parameters.
type Webinar struct {
	ID                     uuid.UUID                   `json:"id"`
	Title                  string                      `json:"title"`
	Description            string                      `json:"description"`
	ThumbnailURL           *string                     `json:"thumbnail_url,omitempty"`
	VideoURL               string                      `json:"video_url"`
	VideoType              playback.VideoType          `json:"video_type"`
	VideoDurationSeconds   int                         `json:"video_duration_seconds"`
	VideoS3Key             *string                     `json:"video_s3_key,omitempty"` // set for UPLOAD videos stored in S3
	Status                 WebinarStatus               `json:"status"`
	ScheduleType           schedule.Type               `json:"schedule_type"`
	JustInTimeDelayMinutes int                         `json:"just_in_time_delay_minutes"`
	RecurringSchedule      *schedule.RecurringSchedule `json:"recurring_schedule,omitempty"`
	SpecificDates          []string                    `json:"specific_dates,omitempty"`
	ReplayEnabled          bool                        `json:"replay_enabled"`
	ReplayExpiresHours     *int                        `json:"replay_expires_hours,omitempty"`
	MinAttendees           int                         `json:"min_attendees"`
	MaxAttendees           int                         `json:"max_attendees"`
	PeakProgress           float64                     `json:"peak_progress"`
	VariancePercent        float64                     `json:"variance_percent"`
	AttendeeSeed           *int64                      `json:"attendee_seed,omitempty"`
	CreatedBy              uuid.UUID                   `json:"created_by"`
	CreatedAt              time.Time                   `json:"created_at"`
	UpdatedAt              time.Time                   `json:"updated_at"`
}
