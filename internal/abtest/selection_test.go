package abtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleArms() []Arm {
	return []Arm{
		{ID: "a", Weight: 50, Impressions: 200, Conversions: 10},
		{ID: "b", Weight: 30, Impressions: 180, Conversions: 27},
		{ID: "c", Weight: 20, Impressions: 150, Conversions: 3},
	}
}

func validArm(t *testing.T, id string, arms []Arm) {
	t.Helper()
	for _, a := range arms {
		if a.ID == id {
			return
		}
	}
	t.Fatalf("selected id %q is not one of the arms", id)
}

func TestSelectReturnsAnArmForEveryAlgorithm(t *testing.T) {
	arms := sampleArms()
	for _, alg := range []Algorithm{AlgorithmRandom, AlgorithmEpsilonGreedy, AlgorithmThompsonSampling, AlgorithmUCB1} {
		for i := 0; i < 50; i++ {
			validArm(t, Select(alg, arms), arms)
		}
	}
}

func TestSelectEmptyArms(t *testing.T) {
	assert.Equal(t, "", Select(AlgorithmRandom, nil))
}

func TestSelectUnknownAlgorithmFallsBackToWeighted(t *testing.T) {
	arms := []Arm{{ID: "only", Weight: 100}}
	assert.Equal(t, "only", Select(Algorithm("SOMETHING_ELSE"), arms))
}

func TestWeightedRandomRespectsZeroWeight(t *testing.T) {
	arms := []Arm{
		{ID: "heavy", Weight: 100},
		{ID: "never", Weight: 0},
	}
	for i := 0; i < 200; i++ {
		assert.Equal(t, "heavy", selectWeightedRandom(arms))
	}
}

func TestWeightedRandomAllZeroWeightsStillPicks(t *testing.T) {
	arms := []Arm{{ID: "a"}, {ID: "b"}}
	validArm(t, selectWeightedRandom(arms), arms)
}

func TestEpsilonGreedyExploitsBestRate(t *testing.T) {
	arms := sampleArms() // "b" has the highest conversion rate
	wins := 0
	for i := 0; i < 500; i++ {
		if selectEpsilonGreedy(arms, defaultEpsilon) == "b" {
			wins++
		}
	}
	// 90% exploitation plus a share of the random 10%; far above a uniform third.
	assert.Greater(t, wins, 350)
}

func TestUCB1PrefersUnexploredArm(t *testing.T) {
	arms := []Arm{
		{ID: "seen", Impressions: 500, Conversions: 400},
		{ID: "fresh", Impressions: 0},
	}
	assert.Equal(t, "fresh", selectUCB1(arms))
}

func TestUCB1NoImpressionsPicksRandomly(t *testing.T) {
	arms := []Arm{{ID: "a"}, {ID: "b"}}
	validArm(t, selectUCB1(arms), arms)
}

func TestThompsonSamplingFavorsClearWinner(t *testing.T) {
	arms := []Arm{
		{ID: "weak", Impressions: 1000, Conversions: 10},
		{ID: "strong", Impressions: 1000, Conversions: 300},
	}
	wins := 0
	for i := 0; i < 200; i++ {
		if selectThompsonSampling(arms) == "strong" {
			wins++
		}
	}
	assert.Greater(t, wins, 190)
}

func TestBetaSampleRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		s := betaSample(2, 5)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}
