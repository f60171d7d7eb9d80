package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanWatchNow(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	duration := 3600 // 60 minutes exactly

	t.Run("before start", func(t *testing.T) {
		w := CanWatchNow(start, duration, start.Add(-90*time.Second))
		assert.False(t, w.CanWatch)
		assert.Equal(t, StatusNotStarted, w.Status)
		assert.Equal(t, 90, w.SecondsUntilStart)
	})

	t.Run("mid broadcast", func(t *testing.T) {
		w := CanWatchNow(start, duration, start.Add(10*time.Minute))
		assert.True(t, w.CanWatch)
		assert.Equal(t, StatusLive, w.Status)
		assert.Equal(t, 600, w.SecondsSinceStart)
	})

	t.Run("after end", func(t *testing.T) {
		w := CanWatchNow(start, duration, start.Add(61*time.Minute))
		assert.False(t, w.CanWatch)
		assert.Equal(t, StatusEnded, w.Status)
		assert.Equal(t, 3660, w.SecondsSinceStart)
	})

	t.Run("duration rounds up to whole minutes", func(t *testing.T) {
		// 3601 seconds rounds to 61 minutes, so 60:30 after start is still live.
		w := CanWatchNow(start, 3601, start.Add(60*time.Minute+30*time.Second))
		assert.True(t, w.CanWatch)
		assert.Equal(t, StatusLive, w.Status)
	})

	t.Run("exact end boundary is still live", func(t *testing.T) {
		w := CanWatchNow(start, duration, start.Add(60*time.Minute))
		assert.True(t, w.CanWatch)
	})
}

func TestReplayExpiresAt(t *testing.T) {
	end := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	assert.Nil(t, ReplayExpiresAt(end, nil))

	zero := 0
	assert.Nil(t, ReplayExpiresAt(end, &zero))

	hours := 48
	got := ReplayExpiresAt(end, &hours)
	assert.NotNil(t, got)
	assert.Equal(t, end.Add(48*time.Hour), *got)
}
