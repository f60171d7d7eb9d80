package abtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProportionZTest(t *testing.T) {
	t.Run("zero trials yields no evidence", func(t *testing.T) {
		r := ProportionZTest(0, 0, 5, 100)
		assert.Equal(t, 1.0, r.PValue)
		assert.Zero(t, r.ZScore)
	})

	t.Run("identical proportions", func(t *testing.T) {
		r := ProportionZTest(10, 100, 10, 100)
		assert.InDelta(t, 0, r.ZScore, 1e-9)
		assert.InDelta(t, 1, r.PValue, 1e-6)
	})

	t.Run("large difference is highly significant", func(t *testing.T) {
		r := ProportionZTest(10, 1000, 100, 1000)
		assert.Less(t, r.PValue, 0.001)
		assert.Greater(t, r.ZScore, 0.0) // second group higher
	})

	t.Run("both proportions zero", func(t *testing.T) {
		r := ProportionZTest(0, 100, 0, 100)
		assert.Equal(t, 1.0, r.PValue)
	})
}

func TestNormalCDF(t *testing.T) {
	assert.InDelta(t, 0.5, normalCDF(0), 1e-6)
	assert.InDelta(t, 0.8413, normalCDF(1), 1e-3)
	assert.InDelta(t, 0.0228, normalCDF(-2), 1e-3)
}

func TestAnalyze(t *testing.T) {
	t.Run("clear treatment win", func(t *testing.T) {
		variants := []VariantStats{
			{ID: "ctl", IsControl: true, Impressions: 1000, Conversions: 20},
			{ID: "trt", Impressions: 1000, Conversions: 80},
		}
		r := Analyze(variants, 0.95)
		require.NotNil(t, r.PValue)
		assert.True(t, r.IsSignificant)
		require.NotNil(t, r.Winner)
		assert.Equal(t, "trt", r.Winner.ID)
		require.NotNil(t, r.Improvement)
		assert.InDelta(t, 300, *r.Improvement, 0.01)
	})

	t.Run("no significance means no winner", func(t *testing.T) {
		variants := []VariantStats{
			{ID: "ctl", IsControl: true, Impressions: 100, Conversions: 10},
			{ID: "trt", Impressions: 100, Conversions: 11},
		}
		r := Analyze(variants, 0.95)
		assert.False(t, r.IsSignificant)
		assert.Nil(t, r.Winner)
		assert.Nil(t, r.Improvement)
	})

	t.Run("control beating treatments wins with zero improvement", func(t *testing.T) {
		variants := []VariantStats{
			{ID: "ctl", IsControl: true, Impressions: 1000, Conversions: 80},
			{ID: "trt", Impressions: 1000, Conversions: 20},
		}
		r := Analyze(variants, 0.95)
		require.NotNil(t, r.Winner)
		assert.Equal(t, "ctl", r.Winner.ID)
		require.NotNil(t, r.Improvement)
		assert.Zero(t, *r.Improvement)
	})

	t.Run("best of several treatments is compared", func(t *testing.T) {
		variants := []VariantStats{
			{ID: "ctl", IsControl: true, Impressions: 1000, Conversions: 20},
			{ID: "mid", Impressions: 1000, Conversions: 40},
			{ID: "top", Impressions: 1000, Conversions: 90},
		}
		r := Analyze(variants, 0.95)
		require.NotNil(t, r.Winner)
		assert.Equal(t, "top", r.Winner.ID)
	})

	t.Run("missing control returns no winner", func(t *testing.T) {
		variants := []VariantStats{
			{ID: "a", Impressions: 1000, Conversions: 20},
			{ID: "b", Impressions: 1000, Conversions: 90},
		}
		r := Analyze(variants, 0.95)
		assert.False(t, r.IsSignificant)
		assert.Nil(t, r.Winner)
		assert.Nil(t, r.PValue)
	})
}
