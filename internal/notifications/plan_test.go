package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketing-hub/autowebinar/internal/models"
)

func plannedTypes(planned []Planned) []models.NotificationType {
	out := make([]models.NotificationType, 0, len(planned))
	for _, p := range planned {
		out = append(out, p.Type)
	}
	return out
}

func TestPlanFullLeadTime(t *testing.T) {
	settings := models.DefaultNotificationSettings(uuid.New())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	startAt := now.Add(2 * time.Hour)

	planned := Plan(settings, startAt, now)
	// Defaults enable the 30 and 5 minute reminders and starting-now; the
	// 1 minute reminder is off.
	assert.Equal(t, []models.NotificationType{
		models.NotifyReminder30Min,
		models.NotifyReminder5Min,
		models.NotifyStartingNow,
	}, plannedTypes(planned))

	assert.Equal(t, startAt.Add(-30*time.Minute), planned[0].ScheduledAt)
	assert.Equal(t, startAt.Add(-5*time.Minute), planned[1].ScheduledAt)
	assert.Equal(t, startAt, planned[2].ScheduledAt)
}

func TestPlanSkipsPastSendTimes(t *testing.T) {
	settings := models.DefaultNotificationSettings(uuid.New())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// A just-in-time registration 10 minutes before start can no longer get
	// the 30 minute reminder.
	planned := Plan(settings, now.Add(10*time.Minute), now)
	assert.Equal(t, []models.NotificationType{
		models.NotifyReminder5Min,
		models.NotifyStartingNow,
	}, plannedTypes(planned))

	// A start already in the past gets nothing.
	assert.Empty(t, Plan(settings, now.Add(-time.Minute), now))
}

func TestPlanHonorsToggles(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	startAt := now.Add(time.Hour)

	settings := models.DefaultNotificationSettings(uuid.New())
	settings.Reminder30Min = false
	settings.Reminder1Min = true
	planned := Plan(settings, startAt, now)
	assert.Equal(t, []models.NotificationType{
		models.NotifyReminder5Min,
		models.NotifyReminder1Min,
		models.NotifyStartingNow,
	}, plannedTypes(planned))

	settings.IsEnabled = false
	assert.Empty(t, Plan(settings, startAt, now))
}

func TestPlanReplay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	settings := models.DefaultNotificationSettings(uuid.New())

	t.Run("availability goes out immediately", func(t *testing.T) {
		planned := PlanReplay(settings, nil, now)
		require.Len(t, planned, 1)
		assert.Equal(t, models.NotifyReplayAvailable, planned[0].Type)
		assert.Equal(t, now, planned[0].ScheduledAt)
	})

	t.Run("expiry warning fires before the cutoff", func(t *testing.T) {
		expiresAt := now.Add(48 * time.Hour)
		planned := PlanReplay(settings, &expiresAt, now)
		require.Len(t, planned, 2)
		assert.Equal(t, models.NotifyReplayExpiring, planned[1].Type)
		assert.Equal(t, expiresAt.Add(-24*time.Hour), planned[1].ScheduledAt)
	})

	t.Run("warning in the past is dropped", func(t *testing.T) {
		expiresAt := now.Add(12 * time.Hour) // warning time already passed
		planned := PlanReplay(settings, &expiresAt, now)
		require.Len(t, planned, 1)
		assert.Equal(t, models.NotifyReplayAvailable, planned[0].Type)
	})

	t.Run("disabled settings plan nothing", func(t *testing.T) {
		off := settings
		off.IsEnabled = false
		expiresAt := now.Add(48 * time.Hour)
		assert.Empty(t, PlanReplay(off, &expiresAt, now))
	})
}

func TestRender(t *testing.T) {
	startAt := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	subject, body := Render(models.NotifyReminder30Min, "Scaling Your Agency", "Ada", startAt)
	assert.Equal(t, "Scaling Your Agency starts in 30 minutes", subject)
	assert.Contains(t, body, "Hi Ada,")
	assert.Contains(t, body, "Mar 10, 2026 14:00 UTC")

	subject, _ = Render(models.NotifyStartingNow, "Scaling Your Agency", "Ada", startAt)
	assert.Equal(t, "Scaling Your Agency is starting now", subject)

	subject, body = Render(models.NotifyReplayExpiring, "Scaling Your Agency", "Ada", startAt)
	assert.Equal(t, "Last chance to watch Scaling Your Agency", subject)
	assert.Contains(t, body, "expires soon")
}
