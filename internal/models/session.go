package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration is a viewer sign-up for an auto-webinar.
type Registration struct {
	ID        uuid.UUID `json:"id"`
	WebinarID uuid.UUID `json:"webinar_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WatchSession is one viewing of a webinar. The scheduled start is resolved
// once at registration; playback position is always recomputed from it, never
// stored. MaxWatchedSeconds is a monotonic high-water mark.
type WatchSession struct {
	ID                uuid.UUID  `json:"id"`
	RegistrationID    uuid.UUID  `json:"registration_id"`
	WebinarID         uuid.UUID  `json:"webinar_id"`
	Token             string     `json:"token"`
	ScheduledStartAt  time.Time  `json:"scheduled_start_at"`
	MaxWatchedSeconds int        `json:"max_watched_seconds"`
	LastPosition      int        `json:"last_position"`
	IsReplay          bool       `json:"is_replay"`
	OfferClicked      bool       `json:"offer_clicked"`
	TypedKeywords     []string   `json:"typed_keywords,omitempty"`
	ReplayExpiresAt   *time.Time `json:"replay_expires_at,omitempty"`
	TokenExpiresAt    time.Time  `json:"token_expires_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
