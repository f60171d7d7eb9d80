package rewards

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketing-hub/autowebinar/internal/models"
)

func intPtr(n int) *int { return &n }

func watchTimeReward(threshold int) models.Reward {
	return models.Reward{
		ID:               uuid.New(),
		TriggerType:      models.TriggerWatchTime,
		WatchTimeSeconds: intPtr(threshold),
		IsActive:         true,
	}
}

func TestCheckWatchTime(t *testing.T) {
	early := watchTimeReward(300)
	late := watchTimeReward(1800)
	inactive := watchTimeReward(100)
	inactive.IsActive = false

	rewards := []models.Reward{early, late, inactive}

	got := CheckWatchTime(rewards, 600, nil)
	require.Len(t, got, 1)
	assert.Equal(t, early.ID, got[0].ID)

	got = CheckWatchTime(rewards, 2000, nil)
	assert.Len(t, got, 2)

	assert.Empty(t, CheckWatchTime(rewards, 299, nil))
}

func TestCheckWatchTimeSkipsClaimedAndExhausted(t *testing.T) {
	r := watchTimeReward(100)
	claimed := map[uuid.UUID]bool{r.ID: true}
	assert.Empty(t, CheckWatchTime([]models.Reward{r}, 500, claimed))

	full := watchTimeReward(100)
	full.MaxClaims = intPtr(10)
	full.CurrentClaims = 10
	assert.Empty(t, CheckWatchTime([]models.Reward{full}, 500, nil))

	open := watchTimeReward(100)
	open.MaxClaims = intPtr(10)
	open.CurrentClaims = 9
	assert.Len(t, CheckWatchTime([]models.Reward{open}, 500, nil), 1)
}

func TestCheckKeyword(t *testing.T) {
	r := models.Reward{
		ID:              uuid.New(),
		TriggerType:     models.TriggerKeyword,
		TriggerKeywords: []string{"BONUS", "gift "},
		IsActive:        true,
	}
	rewards := []models.Reward{r}

	got := CheckKeyword(rewards, "  bonus  ", nil)
	require.NotNil(t, got)
	assert.Equal(t, r.ID, got.ID)

	assert.NotNil(t, CheckKeyword(rewards, "Gift", nil))
	assert.Nil(t, CheckKeyword(rewards, "nope", nil))
	assert.Nil(t, CheckKeyword(rewards, "   ", nil))
	assert.Nil(t, CheckKeyword(rewards, "bonus", map[uuid.UUID]bool{r.ID: true}))
}

func TestCheckTimedInput(t *testing.T) {
	r := models.Reward{
		ID:              uuid.New(),
		TriggerType:     models.TriggerTimedInput,
		AppearAtSeconds: intPtr(600),
		IsActive:        true,
	}
	rewards := []models.Reward{r}

	// Default window is 60 seconds, inclusive at both ends.
	assert.Nil(t, CheckTimedInput(rewards, 599, nil))
	assert.NotNil(t, CheckTimedInput(rewards, 600, nil))
	assert.NotNil(t, CheckTimedInput(rewards, 660, nil))
	assert.Nil(t, CheckTimedInput(rewards, 661, nil))

	r.InputDeadlineSeconds = intPtr(10)
	rewards = []models.Reward{r}
	assert.NotNil(t, CheckTimedInput(rewards, 610, nil))
	assert.Nil(t, CheckTimedInput(rewards, 611, nil))
}

func TestEvaluateConditions(t *testing.T) {
	view := SessionView{
		MaxWatchedSeconds:    2700,
		VideoDurationSeconds: 3600, // 75% watched
		OfferClicked:         true,
		EngagementScore:      40,
		TypedKeywords:        []string{"Bonus"},
	}

	watched50 := Condition{Type: CondWatchTime, Op: OpGTE, Value: "50"}
	watched90 := Condition{Type: CondWatchTime, Op: OpGTE, Value: "90"}
	clicked := Condition{Type: CondOfferClicked, Op: OpEQ, Value: "true"}

	t.Run("empty conditions hold", func(t *testing.T) {
		assert.True(t, Evaluate(view, nil, "AND"))
	})

	t.Run("AND requires all", func(t *testing.T) {
		assert.True(t, Evaluate(view, []Condition{watched50, clicked}, "AND"))
		assert.False(t, Evaluate(view, []Condition{watched90, clicked}, "AND"))
	})

	t.Run("OR requires one", func(t *testing.T) {
		assert.True(t, Evaluate(view, []Condition{watched90, clicked}, "OR"))
		notClicked := Condition{Type: CondOfferClicked, Op: OpEQ, Value: "false"}
		assert.False(t, Evaluate(view, []Condition{watched90, notClicked}, "or"))
	})

	t.Run("keyword contains is case-insensitive", func(t *testing.T) {
		c := Condition{Type: CondKeyword, Op: OpContains, Value: "bonus"}
		assert.True(t, Evaluate(view, []Condition{c}, "AND"))
		missing := Condition{Type: CondKeyword, Op: OpContains, Value: "replay"}
		assert.False(t, Evaluate(view, []Condition{missing}, "AND"))
	})

	t.Run("keyword ne inverts", func(t *testing.T) {
		c := Condition{Type: CondKeyword, Op: OpNE, Value: "replay"}
		assert.True(t, Evaluate(view, []Condition{c}, "AND"))
	})

	t.Run("engagement comparison", func(t *testing.T) {
		c := Condition{Type: CondEngagement, Op: OpLTE, Value: "50"}
		assert.True(t, Evaluate(view, []Condition{c}, "AND"))
	})

	t.Run("unknown type or bad number fails", func(t *testing.T) {
		assert.False(t, Evaluate(view, []Condition{{Type: "mystery", Op: OpEQ, Value: "1"}}, "AND"))
		assert.False(t, Evaluate(view, []Condition{{Type: CondEngagement, Op: OpGTE, Value: "abc"}}, "AND"))
	})

	t.Run("watch time with zero duration fails", func(t *testing.T) {
		empty := SessionView{}
		assert.False(t, Evaluate(empty, []Condition{watched50}, "AND"))
	})
}
