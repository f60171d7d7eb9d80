package models

import (
	"time"

	"github.com/google/uuid"
)

// RewardTriggerType decides when a reward becomes claimable.
type RewardTriggerType string

const (
	TriggerWatchTime  RewardTriggerType = "WATCH_TIME"
	TriggerKeyword    RewardTriggerType = "KEYWORD"
	TriggerTimedInput RewardTriggerType = "TIMED_INPUT"
)

// RewardDeliveryType decides which collaborator delivers a claimed reward.
type RewardDeliveryType string

const (
	DeliverDownload      RewardDeliveryType = "DOWNLOAD"
	DeliverEmail         RewardDeliveryType = "EMAIL"
	DeliverLine          RewardDeliveryType = "LINE"
	DeliverCoupon        RewardDeliveryType = "COUPON"
	DeliverTagAdd        RewardDeliveryType = "TAG_ADD"
	DeliverUnlockContent RewardDeliveryType = "UNLOCK_CONTENT"
)

// RewardConditionType names the session attribute a claim condition inspects.
type RewardConditionType string

// RewardConditionOperator compares a session attribute against a condition value.
type RewardConditionOperator string

// RewardCondition is one claim predicate over a watch session. A reward with
// conditions is only granted when the viewer's session satisfies them.
type RewardCondition struct {
	Type  RewardConditionType     `json:"type"`
	Op    RewardConditionOperator `json:"operator"`
	Value string                  `json:"value"`
}

// Reward is a viewer incentive attached to a webinar, unlocked by a trigger
// condition and delivered through an external channel.
type Reward struct {
	ID                   uuid.UUID          `json:"id"`
	WebinarID            uuid.UUID          `json:"webinar_id"`
	Name                 string             `json:"name"`
	Description          *string            `json:"description,omitempty"`
	TriggerType          RewardTriggerType  `json:"trigger_type"`
	WatchTimeSeconds     *int               `json:"watch_time_seconds,omitempty"`
	TriggerKeywords      []string           `json:"trigger_keywords,omitempty"`
	AppearAtSeconds      *int               `json:"appear_at_seconds,omitempty"`
	InputDeadlineSeconds *int               `json:"input_deadline_seconds,omitempty"`
	DeliveryType         RewardDeliveryType `json:"delivery_type"`
	DeliveryTarget       *string            `json:"delivery_target,omitempty"` // download URL, tag name, content ID
	PopupTitle           *string            `json:"popup_title,omitempty"`
	PopupDescription     *string            `json:"popup_description,omitempty"`
	PopupButtonText      string             `json:"popup_button_text"`
	Conditions           []RewardCondition  `json:"conditions,omitempty"`
	ConditionLogic       string             `json:"condition_logic,omitempty"` // AND or OR
	MaxClaims            *int               `json:"max_claims,omitempty"`
	CurrentClaims        int                `json:"current_claims"`
	IsActive             bool               `json:"is_active"`
	Position             int                `json:"position"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// RewardClaim records one session claiming a reward and its delivery outcome.
type RewardClaim struct {
	ID          uuid.UUID  `json:"id"`
	RewardID    uuid.UUID  `json:"reward_id"`
	SessionID   uuid.UUID  `json:"session_id"`
	CouponCode  *string    `json:"coupon_code,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
