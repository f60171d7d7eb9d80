package rewards

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/internal/models"
	"github.com/marketing-hub/autowebinar/pkg/queue"
)

// Service claims rewards for sessions and dispatches delivery jobs.
type Service struct {
	repo   *Repository
	queue  *queue.Queue
	logger *zap.Logger
}

func NewService(repo *Repository, q *queue.Queue, logger *zap.Logger) *Service {
	return &Service{repo: repo, queue: q, logger: logger}
}

// ClaimAndDispatch records the claim and enqueues delivery. The reward's
// conditions are evaluated against the session snapshot first; an unmet
// condition set returns nil without a claim, like a duplicate would. A coupon
// reward gets its code minted at claim time so the popup can show it
// immediately.
func (s *Service) ClaimAndDispatch(ctx context.Context, reward models.Reward, sessionID, webinarID uuid.UUID, email string, view SessionView) (*models.RewardClaim, error) {
	if !Evaluate(view, reward.Conditions, reward.ConditionLogic) {
		s.logger.Debug("reward conditions not met",
			zap.String("reward_id", reward.ID.String()),
			zap.String("session_id", sessionID.String()))
		return nil, nil
	}

	var couponCode *string
	if reward.DeliveryType == models.DeliverCoupon {
		code, err := MintCouponCode()
		if err != nil {
			return nil, err
		}
		couponCode = &code
	}

	claim, err := s.repo.Claim(ctx, reward.ID, sessionID, couponCode)
	if err != nil {
		if errors.Is(err, ErrAlreadyClaimed) || errors.Is(err, ErrClaimLimitReached) {
			return nil, nil
		}
		return nil, err
	}

	err = s.queue.EnqueueRewardDelivery(ctx, queue.RewardDeliveryPayload{
		ClaimID:   claim.ID,
		RewardID:  reward.ID,
		SessionID: sessionID,
		WebinarID: webinarID,
		Email:     email,
	})
	if err != nil {
		// The claim stands; delivery is retried by ops via the DLQ tooling.
		s.logger.Error("failed to enqueue reward delivery",
			zap.String("claim_id", claim.ID.String()), zap.Error(err))
	}
	return claim, nil
}

// ClaimedSet maps a session's existing claims into the form the trigger
// checks expect.
func (s *Service) ClaimedSet(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]bool, error) {
	claims, err := s.repo.ClaimsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(claims))
	for id := range claims {
		set[id] = true
	}
	return set, nil
}
