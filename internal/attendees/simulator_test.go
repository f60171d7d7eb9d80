package attendees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsValidate(t *testing.T) {
	assert.NoError(t, Bounds{Min: 10, Max: 100}.Validate())
	assert.NoError(t, Bounds{Min: 0, Max: 0}.Validate())
	assert.Error(t, Bounds{Min: -1, Max: 10}.Validate())
	assert.Error(t, Bounds{Min: 50, Max: 10}.Validate())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{PeakProgress: 0.3, VariancePercent: 10}.Validate())
	assert.Error(t, Config{PeakProgress: 1.5}.Validate())
	assert.Error(t, Config{PeakProgress: -0.1}.Validate())
	assert.Error(t, Config{PeakProgress: 0.5, VariancePercent: -1}.Validate())
}

func TestCountStaysWithinBounds(t *testing.T) {
	cfg := Config{PeakProgress: 0.3, VariancePercent: 50}
	for i := 0; i <= 100; i++ {
		p := float64(i) / 100
		got := Count(20, 300, p, cfg)
		assert.GreaterOrEqual(t, got, 20, "progress %.2f", p)
		assert.LessOrEqual(t, got, 300, "progress %.2f", p)
	}

	// Out-of-range progress is clamped, not an error.
	assert.GreaterOrEqual(t, Count(20, 300, -0.5, cfg), 20)
	assert.LessOrEqual(t, Count(20, 300, 2.0, cfg), 300)
}

func TestCountRisesMonotonicallyBeforePeak(t *testing.T) {
	cfg := Config{PeakProgress: 0.3, VariancePercent: 0}
	prev := -1
	for i := 0; i <= 30; i++ {
		p := float64(i) / 100
		got := Count(10, 500, p, cfg)
		assert.GreaterOrEqual(t, got, prev, "progress %.2f", p)
		prev = got
	}
	assert.Equal(t, 500, prev)
}

func TestCountDecaysAfterPeak(t *testing.T) {
	cfg := Config{PeakProgress: 0.3, VariancePercent: 0}
	peak := Count(10, 500, 0.3, cfg)
	late := Count(10, 500, 0.9, cfg)
	assert.Less(t, late, peak)
	// The decay floors near min + 20% of the range, never at min itself.
	assert.Greater(t, Count(10, 500, 1.0, cfg), 10)
}

func TestCountPeakAtEndRisesAllTheWay(t *testing.T) {
	// A peak at the very end of the video means the curve never decays.
	cfg := Config{PeakProgress: 1.0}
	assert.Equal(t, 500, Count(100, 500, 1.0, cfg))

	cfg.VariancePercent = 30
	prev := -1
	for i := 0; i <= 100; i++ {
		p := float64(i) / 100
		got := Count(100, 500, p, cfg)
		assert.GreaterOrEqual(t, got, 100, "progress %.2f", p)
		assert.LessOrEqual(t, got, 500, "progress %.2f", p)
	}

	cfg.VariancePercent = 0
	for i := 0; i <= 100; i++ {
		p := float64(i) / 100
		got := Count(100, 500, p, cfg)
		assert.GreaterOrEqual(t, got, prev, "progress %.2f", p)
		prev = got
	}
	assert.Equal(t, 500, prev)
}

func TestCountPeakAtStartDecaysImmediately(t *testing.T) {
	// PeakProgress 0 is literal: the audience opens at max and only shrinks.
	cfg := Config{PeakProgress: 0, VariancePercent: 0}
	assert.Equal(t, 500, Count(100, 500, 0, cfg))
	prev := 500
	for i := 1; i <= 100; i++ {
		p := float64(i) / 100
		got := Count(100, 500, p, cfg)
		assert.LessOrEqual(t, got, prev, "progress %.2f", p)
		assert.GreaterOrEqual(t, got, 100, "progress %.2f", p)
		prev = got
	}
	// Floors near min + 20% of range.
	assert.Greater(t, prev, 100)
}

func TestCountSeededIsDeterministic(t *testing.T) {
	seed := int64(42)
	cfg := Config{PeakProgress: 0.3, VariancePercent: 15, Seed: &seed}
	a := Count(20, 300, 0.47, cfg)
	b := Count(20, 300, 0.47, cfg)
	assert.Equal(t, a, b)

	other := int64(43)
	cfg2 := cfg
	cfg2.Seed = &other
	// Different seeds generally disagree at some progress point.
	different := false
	for i := 0; i <= 100; i++ {
		p := float64(i) / 100
		if Count(20, 300, p, cfg) != Count(20, 300, p, cfg2) {
			different = true
			break
		}
	}
	assert.True(t, different)
}

func TestPredictPeak(t *testing.T) {
	seed := int64(7)
	got := PredictPeak(20, 300, Config{PeakProgress: 0.3, VariancePercent: 25, Seed: &seed})
	assert.Equal(t, 300, got)

	assert.Equal(t, 300, PredictPeak(20, 300, Config{PeakProgress: 1.0}))
	assert.Equal(t, 300, PredictPeak(20, 300, Config{PeakProgress: 0}))
}

func TestTimeline(t *testing.T) {
	seed := int64(99)
	cfg := Config{PeakProgress: 0.3, VariancePercent: 10, Seed: &seed}

	tl := Timeline(20, 300, 300, 30, cfg)
	require.Len(t, tl, 11) // 0..300 inclusive at 30s steps
	assert.Equal(t, 0, tl[0].Time)
	assert.Equal(t, 300, tl[10].Time)

	again := Timeline(20, 300, 300, 30, cfg)
	assert.Equal(t, tl, again)

	// Non-positive interval falls back to 30 seconds.
	fallback := Timeline(20, 300, 300, 0, cfg)
	assert.Equal(t, tl, fallback)
}

func TestNextLimitsStepSize(t *testing.T) {
	cfg := Config{PeakProgress: 0.3, VariancePercent: 0}
	// Range 0..200 limits each step to ceil(200 * 0.05) = 10.
	got := Next(0, 0, 200, 0.3, cfg)
	assert.Equal(t, 10, got)

	got = Next(200, 0, 200, 1.0, cfg)
	assert.Equal(t, 190, got)

	// A small move lands on the target directly.
	target := Count(0, 200, 0.3, cfg)
	assert.Equal(t, target, Next(target-3, 0, 200, 0.3, cfg))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "847", FormatCount(847))
	assert.Equal(t, "1.2K", FormatCount(1234))
	assert.Equal(t, "10.5K", FormatCount(10500))
	assert.Equal(t, "0", FormatCount(0))
}
