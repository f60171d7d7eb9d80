package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJustInTimeStart(t *testing.T) {
	registeredAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	got := JustInTimeStart(registeredAt, 15)
	assert.Equal(t, registeredAt.Add(15*time.Minute), got)
}

func TestNextAvailableTimesCrossesToNextEnabledDay(t *testing.T) {
	// Saturday 23:00 in Tokyo; Mondays at 10:00 are the only slot.
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	from := time.Date(2026, 3, 7, 23, 0, 0, 0, loc) // Saturday

	s := RecurringSchedule{
		Days:     []time.Weekday{time.Monday},
		Times:    []string{"10:00"},
		Timezone: "Asia/Tokyo",
	}
	got, err := NextAvailableTimes(s, 2, from)
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := time.Date(2026, 3, 9, 10, 0, 0, 0, loc).UTC()
	assert.Equal(t, want, got[0])
	assert.Equal(t, want.AddDate(0, 0, 7), got[1])
}

func TestNextAvailableTimesSkipsSlotAlreadyPassedToday(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	from := time.Date(2026, 3, 9, 11, 0, 0, 0, loc) // Monday 11:00

	s := RecurringSchedule{
		Days:     []time.Weekday{time.Monday},
		Times:    []string{"10:00", "18:00"},
		Timezone: "America/New_York",
	}
	got, err := NextAvailableTimes(s, 1, from)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2026, 3, 9, 18, 0, 0, 0, loc).UTC(), got[0])
}

func TestNextAvailableTimesEmptyScheduleYieldsNothing(t *testing.T) {
	got, err := NextAvailableTimes(RecurringSchedule{Timezone: "UTC"}, 3, time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNextAvailableTimesRejectsBadInput(t *testing.T) {
	_, err := NextAvailableTimes(RecurringSchedule{
		Days: []time.Weekday{time.Monday}, Times: []string{"10:00"}, Timezone: "Not/AZone",
	}, 1, time.Now())
	assert.Error(t, err)

	_, err = NextAvailableTimes(RecurringSchedule{
		Days: []time.Weekday{time.Monday}, Times: []string{"25:99"}, Timezone: "UTC",
	}, 1, time.Now())
	assert.Error(t, err)
}

func TestNextAvailableTimesBounded60Days(t *testing.T) {
	// A schedule with no enabled day inside the window: every day enabled but
	// count larger than what 60 days can produce still terminates.
	s := RecurringSchedule{
		Days:     []time.Weekday{time.Friday},
		Times:    []string{"09:00"},
		Timezone: "UTC",
	}
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := NextAvailableTimes(s, 100, from)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 9) // at most one Friday per week inside 60 days
	for _, ts := range got {
		assert.True(t, ts.After(from))
		assert.Less(t, ts.Sub(from), 61*24*time.Hour)
	}
}

func TestNextFromSpecificDates(t *testing.T) {
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dates := []string{
		"2026-03-20T10:00:00Z",
		"not-a-date",
		"2026-03-01T10:00:00Z", // already past
		"2026-03-15T10:00:00Z",
	}
	got := NextFromSpecificDates(dates, 5, from)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), got[0])
	assert.Equal(t, time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC), got[1])
}

func TestResolveStartAt(t *testing.T) {
	registeredAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("just in time uses configured delay", func(t *testing.T) {
		got := ResolveStartAt(TypeJustInTime, registeredAt, Options{JustInTimeDelayMinutes: 5})
		assert.Equal(t, registeredAt.Add(5*time.Minute), got)
	})

	t.Run("selected time wins", func(t *testing.T) {
		selected := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
		got := ResolveStartAt(TypeRecurring, registeredAt, Options{SelectedTime: &selected})
		assert.Equal(t, selected, got)
	})

	t.Run("no candidate falls back to 15 minutes", func(t *testing.T) {
		got := ResolveStartAt(TypeSpecificDates, registeredAt, Options{
			SpecificDates: []string{"2020-01-01T00:00:00Z"},
		})
		assert.Equal(t, registeredAt.Add(15*time.Minute), got)
	})

	t.Run("on demand starts immediately", func(t *testing.T) {
		got := ResolveStartAt(TypeOnDemand, registeredAt, Options{})
		assert.Equal(t, registeredAt, got)
	})
}
