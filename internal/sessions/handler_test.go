package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marketing-hub/autowebinar/internal/models"
	"github.com/marketing-hub/autowebinar/internal/rewards"
)

func TestReusableSession(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	live := &models.WatchSession{
		ScheduledStartAt: now.Add(-5 * time.Minute),
		TokenExpiresAt:   now.AddDate(0, 0, 7),
	}
	duration := 3600 // window runs 60 minutes from start

	t.Run("live session is reused", func(t *testing.T) {
		assert.True(t, reusableSession(live, nil, duration, now))
	})

	t.Run("upcoming session is reused", func(t *testing.T) {
		s := *live
		s.ScheduledStartAt = now.Add(30 * time.Minute)
		assert.True(t, reusableSession(&s, nil, duration, now))
	})

	t.Run("no prior session", func(t *testing.T) {
		assert.False(t, reusableSession(nil, nil, duration, now))
	})

	t.Run("expired token forces a new session", func(t *testing.T) {
		s := *live
		s.TokenExpiresAt = now.Add(-time.Minute)
		assert.False(t, reusableSession(&s, nil, duration, now))
	})

	t.Run("ended window forces a new session", func(t *testing.T) {
		s := *live
		s.ScheduledStartAt = now.Add(-2 * time.Hour)
		assert.False(t, reusableSession(&s, nil, duration, now))
	})

	t.Run("replay session forces a new session", func(t *testing.T) {
		s := *live
		s.IsReplay = true
		assert.False(t, reusableSession(&s, nil, duration, now))
	})

	t.Run("matching selected time is reused", func(t *testing.T) {
		selected := live.ScheduledStartAt
		assert.True(t, reusableSession(live, &selected, duration, now))
	})

	t.Run("different selected time forces a new session", func(t *testing.T) {
		selected := now.Add(26 * time.Hour)
		assert.False(t, reusableSession(live, &selected, duration, now))
	})
}

func TestConditionView(t *testing.T) {
	session := &models.WatchSession{
		MaxWatchedSeconds: 1800,
		OfferClicked:      true,
		TypedKeywords:     []string{"BONUS", "hello"},
	}
	webinar := &models.Webinar{VideoDurationSeconds: 3600}

	view := conditionView(session, webinar)
	assert.Equal(t, 1800, view.MaxWatchedSeconds)
	assert.Equal(t, 3600, view.VideoDurationSeconds)
	assert.True(t, view.OfferClicked)
	assert.InDelta(t, 50.0, view.EngagementScore, 0.001)
	assert.Equal(t, []string{"BONUS", "hello"}, view.TypedKeywords)

	// The snapshot feeds straight into condition evaluation.
	met := rewards.Evaluate(view, []rewards.Condition{
		{Type: rewards.CondWatchTime, Op: rewards.OpGTE, Value: "50"},
		{Type: rewards.CondOfferClicked, Op: rewards.OpEQ, Value: "true"},
		{Type: rewards.CondKeyword, Op: rewards.OpContains, Value: "bonus"},
	}, "AND")
	assert.True(t, met)
}
