package abtest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/internal/models"
)

// Service assigns variants to sessions, records funnel events, and closes
// auto-optimizing tests once a significant winner emerges.
type Service struct {
	repo   *Repository
	logger *zap.Logger
}

func NewService(repo *Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// VariantForSession returns the variant a session should see for the
// webinar's running test, creating the assignment and recording the
// impression on first contact. Returns nil when no test is running.
func (s *Service) VariantForSession(ctx context.Context, webinarID, sessionID uuid.UUID) (*models.OfferABVariant, error) {
	test, err := s.repo.RunningTestByWebinar(ctx, webinarID)
	if err != nil || test == nil {
		return nil, err
	}

	assignment, err := s.repo.GetAssignment(ctx, test.ID, sessionID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		variants, err := s.repo.Variants(ctx, test.ID)
		if err != nil {
			return nil, err
		}
		if len(variants) == 0 {
			return nil, nil
		}
		arms := toArms(variants)
		chosenID, err := uuid.Parse(Select(test.Algorithm, arms))
		if err != nil {
			return nil, fmt.Errorf("variant selection: %w", err)
		}
		assignment, err = s.repo.CreateAssignment(ctx, test.ID, chosenID, sessionID)
		if err != nil {
			return nil, err
		}
	}

	if _, err := s.repo.RecordImpression(ctx, assignment.ID); err != nil {
		s.logger.Warn("failed to record impression", zap.Error(err))
	}
	return s.repo.GetVariant(ctx, assignment.VariantID)
}

// RecordClick marks the session's first offer click for the running test.
func (s *Service) RecordClick(ctx context.Context, webinarID, sessionID uuid.UUID) error {
	assignment, err := s.assignmentFor(ctx, webinarID, sessionID)
	if err != nil || assignment == nil {
		return err
	}
	_, err = s.repo.RecordClick(ctx, assignment.ID)
	return err
}

// RecordConversion marks the session's conversion and, for auto-optimizing
// tests, checks whether the test can be concluded.
func (s *Service) RecordConversion(ctx context.Context, webinarID, sessionID uuid.UUID) error {
	test, err := s.repo.RunningTestByWebinar(ctx, webinarID)
	if err != nil || test == nil {
		return err
	}
	assignment, err := s.repo.GetAssignment(ctx, test.ID, sessionID)
	if err != nil || assignment == nil {
		return err
	}
	counted, err := s.repo.RecordConversion(ctx, assignment.ID)
	if err != nil {
		return err
	}
	if counted && test.AutoOptimize {
		if err := s.maybeConclude(ctx, test); err != nil {
			s.logger.Warn("auto-optimize check failed", zap.Error(err))
		}
	}
	return nil
}

func (s *Service) assignmentFor(ctx context.Context, webinarID, sessionID uuid.UUID) (*models.OfferABAssignment, error) {
	test, err := s.repo.RunningTestByWebinar(ctx, webinarID)
	if err != nil || test == nil {
		return nil, err
	}
	return s.repo.GetAssignment(ctx, test.ID, sessionID)
}

// AnalyzeTest computes current stats and significance for a test.
func (s *Service) AnalyzeTest(ctx context.Context, test *models.OfferABTest) (*Result, error) {
	variants, err := s.repo.Variants(ctx, test.ID)
	if err != nil {
		return nil, err
	}
	result := Analyze(toStats(variants), test.ConfidenceLevel)
	return &result, nil
}

// maybeConclude completes an auto-optimizing test once every variant has the
// minimum sample, total conversions reach the floor, and the winner is
// statistically significant.
func (s *Service) maybeConclude(ctx context.Context, test *models.OfferABTest) error {
	variants, err := s.repo.Variants(ctx, test.ID)
	if err != nil {
		return err
	}
	totalConversions := 0
	for _, v := range variants {
		if v.Impressions < test.MinSampleSize {
			return nil
		}
		totalConversions += v.Conversions
	}
	if totalConversions < test.MinConversions {
		return nil
	}

	result := Analyze(toStats(variants), test.ConfidenceLevel)
	if !result.IsSignificant || result.Winner == nil {
		return nil
	}
	winnerID, err := uuid.Parse(result.Winner.ID)
	if err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, test.ID, models.ABTestCompleted, &winnerID); err != nil {
		return err
	}
	s.logger.Info("ab test auto-completed",
		zap.String("test_id", test.ID.String()),
		zap.String("winner_id", winnerID.String()))
	return nil
}

func toArms(variants []models.OfferABVariant) []Arm {
	arms := make([]Arm, len(variants))
	for i, v := range variants {
		arms[i] = Arm{
			ID:          v.ID.String(),
			Weight:      v.Weight,
			Impressions: v.Impressions,
			Clicks:      v.Clicks,
			Conversions: v.Conversions,
		}
	}
	return arms
}

func toStats(variants []models.OfferABVariant) []VariantStats {
	stats := make([]VariantStats, len(variants))
	for i, v := range variants {
		st := VariantStats{
			ID:          v.ID.String(),
			Name:        v.Name,
			IsControl:   v.IsControl,
			Impressions: v.Impressions,
			Clicks:      v.Clicks,
			Conversions: v.Conversions,
			Weight:      v.Weight,
		}
		if v.Impressions > 0 {
			st.ClickRate = float64(v.Clicks) / float64(v.Impressions) * 100
			st.ConversionRate = float64(v.Conversions) / float64(v.Impressions) * 100
		}
		stats[i] = st
	}
	return stats
}
