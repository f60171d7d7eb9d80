// Package attendees simulates a plausible concurrent-viewer count for a
// simulated-live webinar: an eased rise to a peak followed by exponential
// decay, with a small random wobble. A seeded mode makes whole timelines
// reproducible for previews and tests.
package attendees

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

const (
	// DefaultPeakProgress is the video progress fraction at which the
	// audience peaks.
	DefaultPeakProgress = 0.3
	// DefaultVariancePercent is the relative wobble applied to the curve.
	DefaultVariancePercent = 10.0
	// decayRate controls how fast the audience shrinks after the peak.
	decayRate = 1.5
	// floorFraction of the min..max range remains at the very end.
	floorFraction = 0.2
)

// Config tunes the simulation curve.
type Config struct {
	PeakProgress    float64 `json:"peak_progress"`
	VariancePercent float64 `json:"variance_percent"`
	Seed            *int64  `json:"seed,omitempty"`
}

// Bounds are the configured audience limits for a webinar.
type Bounds struct {
	Min int `json:"min_attendees"`
	Max int `json:"max_attendees"`
}

// Validate rejects malformed bounds and curve parameters before they reach the
// simulator; the curve functions themselves clamp rather than error.
func (b Bounds) Validate() error {
	if b.Min < 0 {
		return errors.New("min_attendees must be >= 0")
	}
	if b.Min > b.Max {
		return fmt.Errorf("min_attendees (%d) must not exceed max_attendees (%d)", b.Min, b.Max)
	}
	return nil
}

// Validate checks curve parameters.
func (c Config) Validate() error {
	if c.PeakProgress < 0 || c.PeakProgress > 1 {
		return fmt.Errorf("peak_progress %.2f out of range [0,1]", c.PeakProgress)
	}
	if c.VariancePercent < 0 {
		return fmt.Errorf("variance_percent %.2f must be >= 0", c.VariancePercent)
	}
	return nil
}

// seededRandom is a linear-congruential generator normalized to [0,1).
// Deterministic and auditable; the recurrence is value*1103515245+12345 mod 2^31.
func seededRandom(seed int64) func() float64 {
	value := seed
	return func() float64 {
		value = (value*1103515245 + 12345) & 0x7fffffff
		return float64(value) / float64(0x7fffffff)
	}
}

// Count computes the simulated attendee count at a progress fraction.
// Progress is clamped to [0,1]; the result is always within [min,max].
// PeakProgress is taken literally: 0 means the audience starts at max and
// decays immediately, 1 means it rises for the entire video.
func Count(min, max int, progress float64, cfg Config) int {
	p := math.Max(0, math.Min(1, progress))
	baseRange := float64(max - min)

	var base float64
	if p < cfg.PeakProgress || cfg.PeakProgress >= 1 {
		// Rise phase: ease-in-out quadratic from min to max. PeakProgress
		// is > 0 here, so the division is safe.
		t := p / cfg.PeakProgress
		var ease float64
		if t < 0.5 {
			ease = 2 * t * t
		} else {
			ease = 1 - math.Pow(-2*t+2, 2)/2
		}
		base = float64(min) + baseRange*ease
	} else {
		// Decay phase: exponential fall from max toward min + 20% of range.
		// PeakProgress is < 1 here, so the division is safe.
		t := (p - cfg.PeakProgress) / (1 - cfg.PeakProgress)
		decay := math.Exp(-decayRate * t)
		floor := float64(min) + baseRange*floorFraction
		base = floor + (float64(max)-floor)*decay
	}

	random := rand.Float64
	if cfg.Seed != nil {
		random = seededRandom(*cfg.Seed + int64(math.Floor(p*100)))
	}
	variance := (random() - 0.5) * 2 * (cfg.VariancePercent / 100)
	varied := base * (1 + variance)

	clamped := math.Max(float64(min), math.Min(float64(max), varied))
	return int(math.Round(clamped))
}

// Sample is one point of an attendee timeline.
type Sample struct {
	Time  int `json:"time"`
	Count int `json:"count"`
}

// Timeline generates count samples at fixed intervals across the video. Each
// sample is independently seeded when a seed is configured, so the same config
// always reproduces the same timeline.
func Timeline(min, max, videoDuration, intervalSeconds int, cfg Config) []Sample {
	if intervalSeconds <= 0 {
		intervalSeconds = 30
	}
	var timeline []Sample
	for t := 0; t <= videoDuration; t += intervalSeconds {
		progress := float64(t) / float64(videoDuration)
		sampleCfg := cfg
		if cfg.Seed != nil {
			s := *cfg.Seed + int64(t)
			sampleCfg.Seed = &s
		}
		timeline = append(timeline, Sample{Time: t, Count: Count(min, max, progress, sampleCfg)})
	}
	return timeline
}

// Next returns the next count for a live poll loop, limiting the change from
// the previous value to 5% of the range so the display never jumps.
func Next(previousCount, min, max int, progress float64, cfg Config) int {
	target := Count(min, max, progress, cfg)
	maxDelta := int(math.Ceil(float64(max-min) * 0.05))
	delta := target - previousCount
	if delta > maxDelta {
		return previousCount + maxDelta
	}
	if delta < -maxDelta {
		return previousCount - maxDelta
	}
	return target
}

// PredictPeak evaluates the curve at its peak with variance disabled.
func PredictPeak(min, max int, cfg Config) int {
	cfg.VariancePercent = 0
	return Count(min, max, cfg.PeakProgress, cfg)
}

// FormatCount renders a count for display, using a "1.2K" style above 1000.
func FormatCount(count int) string {
	if count >= 1000 {
		return fmt.Sprintf("%.1fK", float64(count)/1000)
	}
	return fmt.Sprintf("%d", count)
}
