package rewards

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/pkg/queue"
)

// Mailer sends a rendered transactional email. The notification scheduler
// enqueues these with the subject and body already built.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, bodyHTML string) error
}

// Processor executes queued delivery jobs: look up the claim, call the
// delivery collaborator, record the outcome.
type Processor struct {
	repo      *Repository
	deliverer *Deliverer
	mailer    Mailer
	queue     *queue.Queue
	logger    *zap.Logger
}

// NewProcessor creates a reward delivery processor.
func NewProcessor(repo *Repository, deliverer *Deliverer, mailer Mailer, q *queue.Queue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{repo: repo, deliverer: deliverer, mailer: mailer, queue: q, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeRewardDelivery:
		return p.processDelivery(ctx, job)
	case queue.JobTypeEmail:
		return p.processEmail(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Processor) processDelivery(ctx context.Context, job *queue.Job) error {
	var payload queue.RewardDeliveryPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	claim, err := p.repo.GetClaim(ctx, payload.ClaimID)
	if err != nil {
		return fmt.Errorf("load claim: %w", err)
	}
	if claim == nil {
		return fmt.Errorf("claim not found: %s", payload.ClaimID)
	}
	if claim.DeliveredAt != nil {
		p.logger.Info("claim already delivered", zap.String("claim_id", claim.ID.String()))
		return nil
	}

	reward, err := p.repo.GetByID(ctx, payload.RewardID)
	if err != nil {
		return fmt.Errorf("load reward: %w", err)
	}
	if reward == nil {
		return fmt.Errorf("reward not found: %s", payload.RewardID)
	}

	if err := p.deliverer.Deliver(ctx, *reward, *claim, payload.Email); err != nil {
		if job.Attempt+1 >= queue.MaxRetries {
			if markErr := p.repo.MarkFailed(ctx, claim.ID, time.Now()); markErr != nil {
				p.logger.Error("mark claim failed", zap.Error(markErr), zap.String("claim_id", claim.ID.String()))
			}
		}
		return fmt.Errorf("deliver: %w", err)
	}

	if err := p.repo.MarkDelivered(ctx, claim.ID, time.Now()); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	p.logger.Info("reward delivered",
		zap.String("claim_id", claim.ID.String()),
		zap.String("reward_id", payload.RewardID.String()),
		zap.String("delivery_type", string(reward.DeliveryType)))
	return nil
}

func (p *Processor) processEmail(ctx context.Context, job *queue.Job) error {
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := p.mailer.SendEmail(ctx, payload.RecipientEmail, payload.Subject, payload.BodyHTML); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	p.logger.Info("email sent",
		zap.String("email_type", payload.EmailType),
		zap.String("to", payload.RecipientEmail),
		zap.String("subject", payload.Subject))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("reward worker stopping")
			return
		default:
		}

		job, source, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job, source); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
