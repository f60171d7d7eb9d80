// Package abtest assigns offer variants to watch sessions and analyzes the
// outcome. Selection supports weighted random, epsilon-greedy, Thompson
// sampling and UCB1; analysis runs a two-proportion z-test against the control.
package abtest

import (
	"math"
	"math/rand"

	"github.com/marketing-hub/autowebinar/internal/models"
)

// Algorithm selects how variants are assigned to sessions. The type lives in
// models (OfferABTest carries it); the alias keeps abtest.Algorithm valid
// without importing abtest from models.
type Algorithm = models.Algorithm

const (
	AlgorithmRandom           = models.AlgorithmRandom
	AlgorithmEpsilonGreedy    = models.AlgorithmEpsilonGreedy
	AlgorithmThompsonSampling = models.AlgorithmThompsonSampling
	AlgorithmUCB1             = models.AlgorithmUCB1
)

// Arm is the selection view of a variant: its weight and observed counters.
type Arm struct {
	ID          string
	Weight      float64
	Impressions int
	Clicks      int
	Conversions int
}

// defaultEpsilon is the exploration rate for epsilon-greedy.
const defaultEpsilon = 0.1

// Select picks a variant arm according to the test's algorithm. Returns ""
// when no arms are given.
func Select(algorithm Algorithm, arms []Arm) string {
	if len(arms) == 0 {
		return ""
	}
	switch algorithm {
	case AlgorithmEpsilonGreedy:
		return selectEpsilonGreedy(arms, defaultEpsilon)
	case AlgorithmThompsonSampling:
		return selectThompsonSampling(arms)
	case AlgorithmUCB1:
		return selectUCB1(arms)
	default:
		return selectWeightedRandom(arms)
	}
}

func conversionRate(a Arm) float64 {
	if a.Impressions == 0 {
		return 0
	}
	return float64(a.Conversions) / float64(a.Impressions)
}

func selectWeightedRandom(arms []Arm) string {
	total := 0.0
	for _, a := range arms {
		total += a.Weight
	}
	if total <= 0 {
		return arms[rand.Intn(len(arms))].ID
	}
	r := rand.Float64() * total
	for _, a := range arms {
		r -= a.Weight
		if r <= 0 {
			return a.ID
		}
	}
	return arms[0].ID
}

func selectEpsilonGreedy(arms []Arm, epsilon float64) string {
	if rand.Float64() < epsilon {
		return arms[rand.Intn(len(arms))].ID
	}
	best := arms[0]
	for _, a := range arms[1:] {
		if conversionRate(a) > conversionRate(best) {
			best = a
		}
	}
	return best.ID
}

func selectThompsonSampling(arms []Arm) string {
	bestID := arms[0].ID
	bestSample := -1.0
	for _, a := range arms {
		alpha := float64(a.Conversions) + 1
		beta := float64(a.Impressions-a.Conversions) + 1
		sample := betaSample(alpha, beta)
		if sample > bestSample {
			bestSample = sample
			bestID = a.ID
		}
	}
	return bestID
}

func selectUCB1(arms []Arm) string {
	totalImpressions := 0
	for _, a := range arms {
		totalImpressions += a.Impressions
	}
	if totalImpressions == 0 {
		return arms[rand.Intn(len(arms))].ID
	}
	bestID := arms[0].ID
	bestScore := math.Inf(-1)
	for _, a := range arms {
		score := math.Inf(1) // unexplored arms first
		if a.Impressions > 0 {
			exploitation := conversionRate(a)
			exploration := math.Sqrt(2 * math.Log(float64(totalImpressions)) / float64(a.Impressions))
			score = exploitation + exploration
		}
		if score > bestScore {
			bestScore = score
			bestID = a.ID
		}
	}
	return bestID
}

// betaSample draws from Beta(alpha, beta) via two gamma draws.
func betaSample(alpha, beta float64) float64 {
	ga := gammaSample(alpha)
	gb := gammaSample(beta)
	return ga / (ga + gb)
}

// gammaSample uses the Marsaglia-Tsang method.
func gammaSample(shape float64) float64 {
	if shape < 1 {
		return gammaSample(shape+1) * math.Pow(rand.Float64(), 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rand.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rand.Float64()
		if u < 1-0.0331*(x*x)*(x*x) {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
