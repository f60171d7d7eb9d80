package notifications

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/pkg/queue"
)

// DefaultPollInterval is how often the dispatcher checks for due notifications.
const DefaultPollInterval = 30 * time.Second

// Dispatcher periodically moves due notifications onto the email queue. The
// worker's email consumer does the actual send; a notification is marked SENT
// once its job is enqueued and FAILED when enqueueing fails.
type Dispatcher struct {
	repo     *Repository
	queue    *queue.Queue
	interval time.Duration
	logger   *zap.Logger
}

func NewDispatcher(repo *Repository, q *queue.Queue, interval time.Duration, logger *zap.Logger) *Dispatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{repo: repo, queue: q, interval: interval, logger: logger}
}

// Run polls for due notifications until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("notification dispatcher stopping")
			return
		case <-ticker.C:
			if err := d.DispatchDue(ctx, time.Now().UTC()); err != nil {
				d.logger.Warn("notification dispatch pass failed", zap.Error(err))
			}
		}
	}
}

// DispatchDue sends one batch of due notifications.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) error {
	items, err := d.repo.Due(ctx, now)
	if err != nil {
		return err
	}
	for _, item := range items {
		n := item.Notification
		subject, body := Render(n.Type, item.WebinarTitle, item.FullName, n.ScheduledAt)
		err := d.queue.EnqueueEmail(ctx, queue.EmailPayload{
			EmailType:      string(n.Type),
			WebinarID:      n.WebinarID,
			RegistrationID: n.RegistrationID,
			RecipientEmail: item.Email,
			Subject:        subject,
			BodyHTML:       body,
		})
		if err != nil {
			d.logger.Error("failed to enqueue notification email",
				zap.String("notification_id", n.ID.String()), zap.Error(err))
			if markErr := d.repo.MarkFailed(ctx, n.ID, now, err.Error()); markErr != nil {
				d.logger.Error("failed to mark notification failed", zap.Error(markErr))
			}
			continue
		}
		if err := d.repo.MarkSent(ctx, n.ID, now); err != nil {
			d.logger.Error("failed to mark notification sent",
				zap.String("notification_id", n.ID.String()), zap.Error(err))
		}
	}
	if len(items) > 0 {
		d.logger.Info("notifications dispatched", zap.Int("count", len(items)))
	}
	return nil
}
