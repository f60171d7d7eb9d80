package schedule

import (
	"math"
	"time"
)

// WatchStatus is the three-way classification of a watch window.
type WatchStatus string

const (
	StatusNotStarted WatchStatus = "not_started"
	StatusLive       WatchStatus = "live"
	StatusEnded      WatchStatus = "ended"
)

// WatchWindow reports whether a viewer can watch right now.
type WatchWindow struct {
	CanWatch          bool        `json:"can_watch"`
	Status            WatchStatus `json:"status"`
	SecondsUntilStart int         `json:"seconds_until_start,omitempty"`
	SecondsSinceStart int         `json:"seconds_since_start,omitempty"`
}

// CanWatchNow classifies now against the broadcast window of a scheduled start.
// The end of the window rounds videoDuration up to whole minutes before adding,
// matching the cutoffs existing registrations were issued against.
func CanWatchNow(scheduledStartAt time.Time, videoDuration int, now time.Time) WatchWindow {
	endTime := scheduledStartAt.Add(time.Duration(math.Ceil(float64(videoDuration)/60)) * time.Minute)

	if now.Before(scheduledStartAt) {
		return WatchWindow{
			CanWatch:          false,
			Status:            StatusNotStarted,
			SecondsUntilStart: int(scheduledStartAt.Sub(now) / time.Second),
		}
	}
	if now.After(endTime) {
		return WatchWindow{
			CanWatch:          false,
			Status:            StatusEnded,
			SecondsSinceStart: int(now.Sub(scheduledStartAt) / time.Second),
		}
	}
	return WatchWindow{
		CanWatch:          true,
		Status:            StatusLive,
		SecondsSinceStart: int(now.Sub(scheduledStartAt) / time.Second),
	}
}

// ReplayExpiresAt returns when a replay stops being available, or nil when the
// replay never expires.
func ReplayExpiresAt(watchEndTime time.Time, expiresAfterHours *int) *time.Time {
	if expiresAfterHours == nil || *expiresAfterHours <= 0 {
		return nil
	}
	t := watchEndTime.Add(time.Duration(*expiresAfterHours) * time.Hour)
	return &t
}
