package rewards

import (
	"context"
	"crypto/rand"
	"fmt"

	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/internal/models"
)

// Delivery collaborators. The core hands a claimed reward to exactly one of
// these based on the reward's delivery type; implementations own the external
// channel (SMTP, LINE API, CRM, content gate).

// EmailSender sends a reward email to the viewer.
type EmailSender interface {
	SendRewardEmail(ctx context.Context, to string, reward models.Reward, couponCode *string) error
}

// LinePusher pushes a reward notification over LINE messaging.
type LinePusher interface {
	PushReward(ctx context.Context, to string, reward models.Reward) error
}

// Tagger adds a CRM tag to the registrant.
type Tagger interface {
	AddTag(ctx context.Context, email, tag string) error
}

// ContentUnlocker grants the registrant access to gated content.
type ContentUnlocker interface {
	Unlock(ctx context.Context, email, contentID string) error
}

// Deliverer routes a claimed reward to the collaborator for its delivery
// type. DOWNLOAD and COUPON rewards need no external call; the popup already
// carries the URL or code.
type Deliverer struct {
	email  EmailSender
	line   LinePusher
	tagger Tagger
	gate   ContentUnlocker
	logger *zap.Logger
}

func NewDeliverer(email EmailSender, line LinePusher, tagger Tagger, gate ContentUnlocker, logger *zap.Logger) *Deliverer {
	return &Deliverer{email: email, line: line, tagger: tagger, gate: gate, logger: logger}
}

// Deliver executes the external side effect for a claim. Errors are
// retryable; the worker handles backoff and the DLQ.
func (d *Deliverer) Deliver(ctx context.Context, reward models.Reward, claim models.RewardClaim, recipientEmail string) error {
	switch reward.DeliveryType {
	case models.DeliverDownload, models.DeliverCoupon:
		return nil
	case models.DeliverEmail:
		return d.email.SendRewardEmail(ctx, recipientEmail, reward, claim.CouponCode)
	case models.DeliverLine:
		return d.line.PushReward(ctx, recipientEmail, reward)
	case models.DeliverTagAdd:
		if reward.DeliveryTarget == nil {
			return fmt.Errorf("reward %s: tag delivery without target", reward.ID)
		}
		return d.tagger.AddTag(ctx, recipientEmail, *reward.DeliveryTarget)
	case models.DeliverUnlockContent:
		if reward.DeliveryTarget == nil {
			return fmt.Errorf("reward %s: unlock delivery without target", reward.ID)
		}
		return d.gate.Unlock(ctx, recipientEmail, *reward.DeliveryTarget)
	default:
		return fmt.Errorf("unknown delivery type %q", reward.DeliveryType)
	}
}

const couponAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// MintCouponCode generates a code like "WEB-7KQ2MD". The alphabet omits
// easily confused characters.
func MintCouponCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = couponAlphabet[int(buf[i])%len(couponAlphabet)]
	}
	return "WEB-" + string(buf), nil
}

// LogSender is a stand-in collaborator that records deliveries in the log.
// It satisfies every delivery interface so single-binary deployments run
// without external integrations configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, _ string) error {
	s.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (s *LogSender) SendRewardEmail(_ context.Context, to string, reward models.Reward, couponCode *string) error {
	fields := []zap.Field{zap.String("to", to), zap.String("reward", reward.Name)}
	if couponCode != nil {
		fields = append(fields, zap.String("coupon_code", *couponCode))
	}
	s.logger.Info("reward email sent", fields...)
	return nil
}

func (s *LogSender) PushReward(_ context.Context, to string, reward models.Reward) error {
	s.logger.Info("reward pushed to LINE", zap.String("to", to), zap.String("reward", reward.Name))
	return nil
}

func (s *LogSender) AddTag(_ context.Context, email, tag string) error {
	s.logger.Info("tag added", zap.String("email", email), zap.String("tag", tag))
	return nil
}

func (s *LogSender) Unlock(_ context.Context, email, contentID string) error {
	s.logger.Info("content unlocked", zap.String("email", email), zap.String("content_id", contentID))
	return nil
}
