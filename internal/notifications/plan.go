// Package notifications schedules and sends the viewer email lifecycle of a
// webinar: pre-start reminders, the starting-now alert, and replay
// availability and expiry notices. Planning is pure; persistence and dispatch
// live in the repository and dispatcher.
package notifications

import (
	"fmt"
	"time"

	"github.com/marketing-hub/autowebinar/internal/models"
)

// Planned is one notification the planner wants created.
type Planned struct {
	Type        models.NotificationType
	ScheduledAt time.Time
}

// reminderOffsets maps pre-start reminder types to how long before the start
// they fire.
var reminderOffsets = []struct {
	Type   models.NotificationType
	Before time.Duration
}{
	{models.NotifyReminder30Min, 30 * time.Minute},
	{models.NotifyReminder5Min, 5 * time.Minute},
	{models.NotifyReminder1Min, 1 * time.Minute},
}

func allows(s models.NotificationSettings, t models.NotificationType) bool {
	switch t {
	case models.NotifyReminder30Min:
		return s.Reminder30Min
	case models.NotifyReminder5Min:
		return s.Reminder5Min
	case models.NotifyReminder1Min:
		return s.Reminder1Min
	case models.NotifyStartingNow:
		return s.StartingNow
	case models.NotifyReplayAvailable:
		return s.ReplayAvailable
	case models.NotifyReplayExpiring:
		return s.ReplayExpiring
	default:
		return false
	}
}

// Plan lays out the pre-start notifications for one registration. Types the
// settings disable and send times that have already passed are dropped, so a
// just-in-time registration minutes before the start only gets the
// notifications that can still fire.
func Plan(settings models.NotificationSettings, startAt, now time.Time) []Planned {
	if !settings.IsEnabled {
		return nil
	}
	var out []Planned
	for _, r := range reminderOffsets {
		if !allows(settings, r.Type) {
			continue
		}
		at := startAt.Add(-r.Before)
		if at.Before(now) {
			continue
		}
		out = append(out, Planned{Type: r.Type, ScheduledAt: at})
	}
	if settings.StartingNow && !startAt.Before(now) {
		out = append(out, Planned{Type: models.NotifyStartingNow, ScheduledAt: startAt})
	}
	return out
}

// PlanReplay lays out the replay notifications once a session rolls over to
// replay. The availability notice goes out immediately; the expiry warning
// fires ReplayExpiringHours before the replay closes, when that is still in
// the future. A replay without an expiry gets no warning.
func PlanReplay(settings models.NotificationSettings, expiresAt *time.Time, now time.Time) []Planned {
	if !settings.IsEnabled {
		return nil
	}
	var out []Planned
	if settings.ReplayAvailable {
		out = append(out, Planned{Type: models.NotifyReplayAvailable, ScheduledAt: now})
	}
	if settings.ReplayExpiring && expiresAt != nil {
		warnHours := settings.ReplayExpiringHours
		if warnHours <= 0 {
			warnHours = 24
		}
		at := expiresAt.Add(-time.Duration(warnHours) * time.Hour)
		if at.After(now) {
			out = append(out, Planned{Type: models.NotifyReplayExpiring, ScheduledAt: at})
		}
	}
	return out
}

// Render builds the subject and HTML body for a notification.
func Render(t models.NotificationType, webinarTitle, fullName string, startAt time.Time) (subject, bodyHTML string) {
	when := startAt.UTC().Format("Jan 2, 2006 15:04 MST")
	switch t {
	case models.NotifyReminder30Min:
		subject = fmt.Sprintf("%s starts in 30 minutes", webinarTitle)
		bodyHTML = fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> starts in 30 minutes, at %s.</p>", fullName, webinarTitle, when)
	case models.NotifyReminder5Min:
		subject = fmt.Sprintf("%s starts in 5 minutes", webinarTitle)
		bodyHTML = fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> starts in 5 minutes. Grab a seat!</p>", fullName, webinarTitle)
	case models.NotifyReminder1Min:
		subject = fmt.Sprintf("%s is about to start", webinarTitle)
		bodyHTML = fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> starts in 1 minute.</p>", fullName, webinarTitle)
	case models.NotifyStartingNow:
		subject = fmt.Sprintf("%s is starting now", webinarTitle)
		bodyHTML = fmt.Sprintf("<p>Hi %s,</p><p><strong>%s</strong> is live. Join now!</p>", fullName, webinarTitle)
	case models.NotifyReplayAvailable:
		subject = fmt.Sprintf("Replay available: %s", webinarTitle)
		bodyHTML = fmt.Sprintf("<p>Hi %s,</p><p>The replay of <strong>%s</strong> is ready to watch.</p>", fullName, webinarTitle)
	case models.NotifyReplayExpiring:
		subject = fmt.Sprintf("Last chance to watch %s", webinarTitle)
		bodyHTML = fmt.Sprintf("<p>Hi %s,</p><p>The replay of <strong>%s</strong> expires soon. Watch it before it's gone.</p>", fullName, webinarTitle)
	default:
		subject = webinarTitle
		bodyHTML = fmt.Sprintf("<p>Hi %s,</p><p>Update on <strong>%s</strong>.</p>", fullName, webinarTitle)
	}
	return subject, bodyHTML
}
