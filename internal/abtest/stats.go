package abtest

import "math"

// VariantStats is the analysis view of a variant.
type VariantStats struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	IsControl      bool    `json:"is_control"`
	Impressions    int     `json:"impressions"`
	Clicks         int     `json:"clicks"`
	Conversions    int     `json:"conversions"`
	ClickRate      float64 `json:"click_rate"`      // percent
	ConversionRate float64 `json:"conversion_rate"` // percent
	Weight         float64 `json:"weight"`
}

// Result is the outcome of analyzing a running test.
type Result struct {
	Variants        []VariantStats `json:"variants"`
	Winner          *VariantStats  `json:"winner,omitempty"`
	IsSignificant   bool           `json:"is_significant"`
	ConfidenceLevel float64        `json:"confidence_level"`
	PValue          *float64       `json:"p_value,omitempty"`
	Improvement     *float64       `json:"improvement,omitempty"` // winner's lift over control, percent
}

// ZTestResult holds a two-proportion z-test outcome.
type ZTestResult struct {
	ZScore float64
	PValue float64
}

// ProportionZTest runs a pooled two-proportion z-test. Zero trials on either
// side yields pValue 1 (no evidence).
func ProportionZTest(successes1, trials1, successes2, trials2 int) ZTestResult {
	if trials1 == 0 || trials2 == 0 {
		return ZTestResult{ZScore: 0, PValue: 1}
	}
	p1 := float64(successes1) / float64(trials1)
	p2 := float64(successes2) / float64(trials2)
	pooled := float64(successes1+successes2) / float64(trials1+trials2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(trials1) + 1/float64(trials2)))
	if se == 0 {
		return ZTestResult{ZScore: 0, PValue: 1}
	}
	z := (p2 - p1) / se
	p := 2 * (1 - normalCDF(math.Abs(z)))
	return ZTestResult{ZScore: z, PValue: p}
}

// normalCDF is the standard normal CDF via the Abramowitz-Stegun erf
// approximation.
func normalCDF(z float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)
	sign := 1.0
	if z < 0 {
		sign = -1.0
	}
	z = math.Abs(z) / math.Sqrt2
	t := 1.0 / (1.0 + p*z)
	y := 1.0 - ((((a5*t+a4)*t+a3)*t+a2)*t+a1)*t*math.Exp(-z*z)
	return 0.5 * (1.0 + sign*y)
}

// Analyze compares the best-performing treatment against the control and
// declares a winner when the z-test clears the confidence level.
func Analyze(variants []VariantStats, confidenceLevel float64) Result {
	result := Result{Variants: variants, ConfidenceLevel: confidenceLevel}

	var control *VariantStats
	var treatments []VariantStats
	for i := range variants {
		if variants[i].IsControl {
			control = &variants[i]
		} else {
			treatments = append(treatments, variants[i])
		}
	}
	if control == nil || len(treatments) == 0 {
		return result
	}

	rate := func(v VariantStats) float64 {
		if v.Impressions == 0 {
			return 0
		}
		return float64(v.Conversions) / float64(v.Impressions)
	}
	best := treatments[0]
	for _, t := range treatments[1:] {
		if rate(t) > rate(best) {
			best = t
		}
	}

	z := ProportionZTest(control.Conversions, control.Impressions, best.Conversions, best.Impressions)
	pv := z.PValue
	result.PValue = &pv
	result.IsSignificant = pv < 1-confidenceLevel
	if !result.IsSignificant {
		return result
	}

	controlRate := rate(*control)
	bestRate := rate(best)
	if bestRate > controlRate {
		winner := best
		result.Winner = &winner
		improvement := 0.0
		if controlRate > 0 {
			improvement = (bestRate - controlRate) / controlRate * 100
		}
		result.Improvement = &improvement
	} else {
		winner := *control
		result.Winner = &winner
		zero := 0.0
		result.Improvement = &zero
	}
	return result
}
