package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPosition(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, Position(start, 3600, start.Add(-30*time.Second)))
	assert.Equal(t, 0, Position(start, 3600, start))
	assert.Equal(t, 600, Position(start, 3600, start.Add(10*time.Minute)))
	assert.Equal(t, 3600, Position(start, 3600, start.Add(2*time.Hour)))
}

func TestGetState(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	duration := 3600

	t.Run("not started", func(t *testing.T) {
		now := start.Add(-10 * time.Second)
		s := GetState(start, duration, now)
		assert.False(t, s.IsLive)
		assert.False(t, s.IsEnded)
		assert.Equal(t, 0, s.CurrentPosition)
		assert.Equal(t, 10, s.TimeUntilStart)
		assert.Equal(t, now, s.CurrentServerTime)
	})

	t.Run("live", func(t *testing.T) {
		s := GetState(start, duration, start.Add(600*time.Second))
		assert.True(t, s.IsLive)
		assert.False(t, s.IsEnded)
		assert.Equal(t, 600, s.CurrentPosition)
		assert.Zero(t, s.TimeUntilStart)
	})

	t.Run("start instant is live at zero", func(t *testing.T) {
		s := GetState(start, duration, start)
		assert.True(t, s.IsLive)
		assert.Equal(t, 0, s.CurrentPosition)
	})

	t.Run("ended exactly at duration", func(t *testing.T) {
		s := GetState(start, duration, start.Add(3600*time.Second))
		assert.True(t, s.IsEnded)
		assert.False(t, s.IsLive)
		assert.Equal(t, duration, s.CurrentPosition)
	})
}

func TestSyncCorrection(t *testing.T) {
	t.Run("drift beyond tolerance", func(t *testing.T) {
		c := SyncCorrection(10, 13, 2)
		assert.True(t, c.NeedsCorrection)
		assert.Equal(t, 13, c.TargetPosition)
		assert.Equal(t, 3, c.Drift)
	})

	t.Run("drift within tolerance", func(t *testing.T) {
		c := SyncCorrection(10, 11, 2)
		assert.False(t, c.NeedsCorrection)
		assert.Equal(t, 1, c.Drift)
	})

	t.Run("client ahead reports negative drift", func(t *testing.T) {
		c := SyncCorrection(20, 10, 2)
		assert.True(t, c.NeedsCorrection)
		assert.Equal(t, -10, c.Drift)
	})
}

func TestValidateSeek(t *testing.T) {
	t.Run("live seek ahead is clamped", func(t *testing.T) {
		r := ValidateSeek(120, 100, false)
		assert.False(t, r.Allowed)
		assert.Equal(t, 100, r.CorrectedPosition)
	})

	t.Run("live seek backward is allowed", func(t *testing.T) {
		r := ValidateSeek(50, 100, false)
		assert.True(t, r.Allowed)
		assert.Equal(t, 50, r.CorrectedPosition)
	})

	t.Run("replay seeks anywhere", func(t *testing.T) {
		r := ValidateSeek(120, 100, true)
		assert.True(t, r.Allowed)
		assert.Equal(t, 120, r.CorrectedPosition)
	})
}

func TestCompletionPercent(t *testing.T) {
	assert.Equal(t, float64(0), CompletionPercent(100, 0))
	assert.InDelta(t, 50.0, CompletionPercent(1800, 3600), 0.001)
	assert.Equal(t, float64(100), CompletionPercent(5000, 3600))
}
