package abtest

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/internal/models"
	"github.com/marketing-hub/autowebinar/pkg/response"
)

// Handler exposes admin endpoints for offer A/B tests.
type Handler struct {
	repo    *Repository
	service *Service
	logger  *zap.Logger
}

func NewHandler(repo *Repository, service *Service, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, service: service, logger: logger}
}

type variantRequest struct {
	Name        string  `json:"name" binding:"required"`
	IsControl   bool    `json:"is_control"`
	Weight      float64 `json:"weight"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ButtonText  *string `json:"button_text"`
	ButtonURL   *string `json:"button_url"`
}

type createTestRequest struct {
	Name            string           `json:"name" binding:"required"`
	Algorithm       Algorithm        `json:"algorithm"`
	ConfidenceLevel float64          `json:"confidence_level"`
	MinSampleSize   int              `json:"min_sample_size"`
	MinConversions  int              `json:"min_conversions"`
	AutoOptimize    bool             `json:"auto_optimize"`
	Variants        []variantRequest `json:"variants" binding:"required,min=2,dive"`
}

// Create sets up a test with its variants. Exactly one variant must be the
// control.
func (h *Handler) Create(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var req createTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	controls := 0
	for _, v := range req.Variants {
		if v.IsControl {
			controls++
		}
	}
	if controls != 1 {
		response.BadRequest(c, "exactly one variant must be marked as control")
		return
	}

	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = AlgorithmRandom
	}
	confidence := req.ConfidenceLevel
	if confidence == 0 {
		confidence = 0.95
	}
	if confidence <= 0 || confidence >= 1 {
		response.BadRequest(c, "confidence_level must be between 0 and 1")
		return
	}
	minSample := req.MinSampleSize
	if minSample == 0 {
		minSample = 100
	}
	minConversions := req.MinConversions
	if minConversions == 0 {
		minConversions = 10
	}

	test := &models.OfferABTest{
		WebinarID:       webinarID,
		Name:            req.Name,
		Algorithm:       algorithm,
		ConfidenceLevel: confidence,
		MinSampleSize:   minSample,
		MinConversions:  minConversions,
		AutoOptimize:    req.AutoOptimize,
	}
	variants := make([]models.OfferABVariant, len(req.Variants))
	for i, v := range req.Variants {
		weight := v.Weight
		if weight <= 0 {
			weight = 1
		}
		variants[i] = models.OfferABVariant{
			Name:        v.Name,
			IsControl:   v.IsControl,
			Weight:      weight,
			Title:       v.Title,
			Description: v.Description,
			ButtonText:  v.ButtonText,
			ButtonURL:   v.ButtonURL,
		}
	}

	if err := h.repo.CreateTest(c.Request.Context(), test, variants); err != nil {
		h.logger.Error("failed to create ab test", zap.Error(err))
		response.InternalError(c, "failed to create test")
		return
	}
	response.Created(c, gin.H{"test": test, "variants": variants})
}

// List returns all tests of a webinar.
func (h *Handler) List(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	tests, err := h.repo.ListByWebinar(c.Request.Context(), webinarID)
	if err != nil {
		h.logger.Error("failed to list ab tests", zap.Error(err))
		response.InternalError(c, "failed to list tests")
		return
	}
	response.OK(c, gin.H{"tests": tests, "count": len(tests)})
}

// validTransitions guards the test lifecycle.
var validTransitions = map[models.ABTestStatus]map[models.ABTestStatus]bool{
	models.ABTestDraft:   {models.ABTestRunning: true},
	models.ABTestRunning: {models.ABTestPaused: true, models.ABTestCompleted: true},
	models.ABTestPaused:  {models.ABTestRunning: true, models.ABTestCompleted: true},
}

// SetStatus transitions a test between lifecycle states. Completing a test
// manually records the current best variant as the winner when the analysis
// is significant.
func (h *Handler) SetStatus(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("testId"))
	if err != nil {
		response.BadRequest(c, "invalid test id")
		return
	}
	var req struct {
		Status models.ABTestStatus `json:"status" binding:"required,oneof=RUNNING PAUSED COMPLETED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	test, err := h.repo.GetTest(ctx, testID)
	if err != nil {
		h.logger.Error("failed to load ab test", zap.Error(err))
		response.InternalError(c, "failed to update test")
		return
	}
	if test == nil {
		response.NotFound(c, "test not found")
		return
	}
	if !validTransitions[test.Status][req.Status] {
		response.BadRequest(c, "invalid status transition")
		return
	}

	var winnerID *uuid.UUID
	if req.Status == models.ABTestCompleted {
		result, err := h.service.AnalyzeTest(ctx, test)
		if err != nil {
			h.logger.Error("failed to analyze ab test", zap.Error(err))
			response.InternalError(c, "failed to update test")
			return
		}
		if result.IsSignificant && result.Winner != nil {
			if id, err := uuid.Parse(result.Winner.ID); err == nil {
				winnerID = &id
			}
		}
	}

	if err := h.repo.SetStatus(ctx, testID, req.Status, winnerID); err != nil {
		h.logger.Error("failed to update ab test status", zap.Error(err))
		response.InternalError(c, "failed to update test")
		return
	}
	response.OK(c, gin.H{"status": req.Status, "winner_id": winnerID})
}

// Analyze returns current stats and significance for a test.
func (h *Handler) Analyze(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("testId"))
	if err != nil {
		response.BadRequest(c, "invalid test id")
		return
	}
	test, err := h.repo.GetTest(c.Request.Context(), testID)
	if err != nil {
		h.logger.Error("failed to load ab test", zap.Error(err))
		response.InternalError(c, "failed to analyze test")
		return
	}
	if test == nil {
		response.NotFound(c, "test not found")
		return
	}
	result, err := h.service.AnalyzeTest(c.Request.Context(), test)
	if err != nil {
		h.logger.Error("failed to analyze ab test", zap.Error(err))
		response.InternalError(c, "failed to analyze test")
		return
	}
	response.OK(c, result)
}
