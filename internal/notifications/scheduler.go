package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scheduler creates the scheduled notification rows for registrations. It is
// called from the registration and replay paths; failures there are logged,
// never surfaced to the viewer.
type Scheduler struct {
	repo   *Repository
	logger *zap.Logger
}

func NewScheduler(repo *Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{repo: repo, logger: logger}
}

// ScheduleForRegistration plans and stores the pre-start notifications for a
// registration's scheduled start. Pending notifications from an earlier slot
// are cancelled first, so rescheduling never double-sends.
func (s *Scheduler) ScheduleForRegistration(ctx context.Context, webinarID, registrationID uuid.UUID, startAt time.Time) error {
	settings, err := s.repo.GetSettings(ctx, webinarID)
	if err != nil {
		return err
	}
	if _, err := s.repo.CancelForRegistration(ctx, registrationID); err != nil {
		return err
	}
	planned := Plan(settings, startAt, time.Now().UTC())
	if len(planned) == 0 {
		return nil
	}
	if err := s.repo.Schedule(ctx, webinarID, registrationID, planned); err != nil {
		return err
	}
	s.logger.Debug("notifications scheduled",
		zap.String("registration_id", registrationID.String()),
		zap.Int("count", len(planned)))
	return nil
}

// ScheduleReplay plans and stores the replay notifications when a session
// rolls over to replay.
func (s *Scheduler) ScheduleReplay(ctx context.Context, webinarID, registrationID uuid.UUID, expiresAt *time.Time) error {
	settings, err := s.repo.GetSettings(ctx, webinarID)
	if err != nil {
		return err
	}
	planned := PlanReplay(settings, expiresAt, time.Now().UTC())
	if len(planned) == 0 {
		return nil
	}
	return s.repo.Schedule(ctx, webinarID, registrationID, planned)
}
