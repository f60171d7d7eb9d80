// Package playback derives the server-authoritative playback position of a
// simulated-live video from wall-clock time. Every viewer recomputes the same
// position from the shared scheduled start, so no server push or session
// affinity is needed to keep an audience in sync.
package playback

import "time"

// State is the full playback state at one evaluation instant. Exactly one of
// not-started (TimeUntilStart set), live, or ended holds.
type State struct {
	VideoStartTime    time.Time `json:"video_start_time"`
	CurrentServerTime time.Time `json:"current_server_time"`
	VideoDuration     int       `json:"video_duration"`
	CurrentPosition   int       `json:"current_position"`
	IsLive            bool      `json:"is_live"`
	IsEnded           bool      `json:"is_ended"`
	TimeUntilStart    int       `json:"time_until_start,omitempty"`
}

// Position returns the clamped elapsed playback position in seconds.
func Position(scheduledStartAt time.Time, videoDuration int, now time.Time) int {
	elapsed := int(now.Sub(scheduledStartAt) / time.Second)
	if elapsed < 0 {
		return 0
	}
	if elapsed > videoDuration {
		return videoDuration
	}
	return elapsed
}

// GetState computes the playback state for a scheduled start. Pure: the result
// depends only on the three inputs.
func GetState(scheduledStartAt time.Time, videoDuration int, now time.Time) State {
	elapsed := int(now.Sub(scheduledStartAt) / time.Second)

	if elapsed < 0 {
		return State{
			VideoStartTime:    scheduledStartAt,
			CurrentServerTime: now,
			VideoDuration:     videoDuration,
			CurrentPosition:   0,
			TimeUntilStart:    -elapsed,
		}
	}
	if elapsed >= videoDuration {
		return State{
			VideoStartTime:    scheduledStartAt,
			CurrentServerTime: now,
			VideoDuration:     videoDuration,
			CurrentPosition:   videoDuration,
			IsEnded:           true,
		}
	}
	return State{
		VideoStartTime:    scheduledStartAt,
		CurrentServerTime: now,
		VideoDuration:     videoDuration,
		CurrentPosition:   elapsed,
		IsLive:            true,
	}
}

// DefaultSyncToleranceSeconds is the drift beyond which clients must correct.
const DefaultSyncToleranceSeconds = 2

// Correction tells a client whether to jump to the server position.
type Correction struct {
	NeedsCorrection bool `json:"needs_correction"`
	TargetPosition  int  `json:"target_position"`
	Drift           int  `json:"drift"` // seconds; positive = client behind
}

// SyncCorrection compares a client-reported position against the authoritative
// server position.
func SyncCorrection(clientPosition, serverPosition, toleranceSeconds int) Correction {
	drift := serverPosition - clientPosition
	abs := drift
	if abs < 0 {
		abs = -abs
	}
	return Correction{
		NeedsCorrection: abs > toleranceSeconds,
		TargetPosition:  serverPosition,
		Drift:           drift,
	}
}

// SeekResult is the outcome of validating a seek request.
type SeekResult struct {
	Allowed           bool `json:"allowed"`
	CorrectedPosition int  `json:"corrected_position"`
}

// ValidateSeek enforces that live viewers cannot skip ahead of the broadcast.
// Replay viewers may seek anywhere.
func ValidateSeek(requestedPosition, maxAllowedPosition int, isReplay bool) SeekResult {
	if isReplay {
		return SeekResult{Allowed: true, CorrectedPosition: requestedPosition}
	}
	if requestedPosition > maxAllowedPosition {
		return SeekResult{Allowed: false, CorrectedPosition: maxAllowedPosition}
	}
	return SeekResult{Allowed: true, CorrectedPosition: requestedPosition}
}

// CompletionPercent computes watch completion from the high-water mark of
// watched seconds, so scrubbing backward never lowers completion.
func CompletionPercent(maxWatchedSeconds, videoDuration int) float64 {
	if videoDuration <= 0 {
		return 0
	}
	pct := float64(maxWatchedSeconds) / float64(videoDuration) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
