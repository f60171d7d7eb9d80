package models

import (
	"time"

	"github.com/google/uuid"
)

// Algorithm selects how variants are assigned to sessions.
type Algorithm string

const (
	AlgorithmRandom           Algorithm = "RANDOM"
	AlgorithmEpsilonGreedy    Algorithm = "EPSILON_GREEDY"
	AlgorithmThompsonSampling Algorithm = "THOMPSON_SAMPLING"
	AlgorithmUCB1             Algorithm = "UCB1"
)

// ABTestStatus is the lifecycle state of an offer A/B test.
type ABTestStatus string

const (
	ABTestDraft     ABTestStatus = "DRAFT"
	ABTestRunning   ABTestStatus = "RUNNING"
	ABTestPaused    ABTestStatus = "PAUSED"
	ABTestCompleted ABTestStatus = "COMPLETED"
)

// OfferABTest is an experiment over offer presentation variants.
type OfferABTest struct {
	ID              uuid.UUID        `json:"id"`
	WebinarID       uuid.UUID        `json:"webinar_id"`
	Name            string           `json:"name"`
	Status          ABTestStatus     `json:"status"`
	Algorithm       Algorithm        `json:"algorithm"`
	ConfidenceLevel float64          `json:"confidence_level"`
	MinSampleSize   int              `json:"min_sample_size"`
	MinConversions  int              `json:"min_conversions"`
	AutoOptimize    bool             `json:"auto_optimize"`
	WinnerID        *uuid.UUID       `json:"winner_id,omitempty"`
	StartedAt       *time.Time       `json:"started_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// OfferABVariant is one presentation of an offer under test.
type OfferABVariant struct {
	ID          uuid.UUID `json:"id"`
	TestID      uuid.UUID `json:"test_id"`
	Name        string    `json:"name"`
	IsControl   bool      `json:"is_control"`
	Weight      float64   `json:"weight"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	ButtonText  *string   `json:"button_text,omitempty"`
	ButtonURL   *string   `json:"button_url,omitempty"`
	Impressions int       `json:"impressions"`
	Clicks      int       `json:"clicks"`
	Conversions int       `json:"conversions"`
	CreatedAt   time.Time `json:"created_at"`
}

// OfferABAssignment pins a watch session to a variant so repeat requests see
// the same presentation. Event flags are set at most once per assignment.
type OfferABAssignment struct {
	ID          uuid.UUID  `json:"id"`
	TestID      uuid.UUID  `json:"test_id"`
	VariantID   uuid.UUID  `json:"variant_id"`
	SessionID   uuid.UUID  `json:"session_id"`
	Impressed   bool       `json:"impressed"`
	ImpressedAt *time.Time `json:"impressed_at,omitempty"`
	Clicked     bool       `json:"clicked"`
	ClickedAt   *time.Time `json:"clicked_at,omitempty"`
	Converted   bool       `json:"converted"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
