package rewards

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/internal/models"
)

func TestClaimAndDispatchSkipsUnmetConditions(t *testing.T) {
	// The condition gate runs before any persistence, so with conditions
	// unmet the claim never reaches the repository or the queue.
	svc := NewService(nil, nil, zap.NewNop())
	reward := models.Reward{
		ID:           uuid.New(),
		DeliveryType: models.DeliverCoupon,
		Conditions: []Condition{
			{Type: CondWatchTime, Op: OpGTE, Value: "75"},
		},
		ConditionLogic: "AND",
	}
	view := SessionView{MaxWatchedSeconds: 300, VideoDurationSeconds: 3600}

	claim, err := svc.ClaimAndDispatch(context.Background(), reward, uuid.New(), uuid.New(), "viewer@example.com", view)
	require.NoError(t, err)
	assert.Nil(t, claim)
}

func TestValidCondition(t *testing.T) {
	assert.True(t, ValidCondition(Condition{Type: CondWatchTime, Op: OpGTE, Value: "50"}))
	assert.True(t, ValidCondition(Condition{Type: CondKeyword, Op: OpContains, Value: "yes"}))
	assert.False(t, ValidCondition(Condition{Type: "quiz_answer", Op: OpEQ, Value: "a"}))
	assert.False(t, ValidCondition(Condition{Type: CondEngagement, Op: "gt", Value: "10"}))
}
