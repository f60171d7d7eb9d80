package rewards

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/internal/models"
	"github.com/marketing-hub/autowebinar/pkg/response"
)

// Handler exposes admin CRUD for webinar rewards.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type rewardRequest struct {
	Name                 string                    `json:"name" binding:"required"`
	Description          *string                   `json:"description"`
	TriggerType          models.RewardTriggerType  `json:"trigger_type" binding:"required,oneof=WATCH_TIME KEYWORD TIMED_INPUT"`
	WatchTimeSeconds     *int                      `json:"watch_time_seconds"`
	TriggerKeywords      []string                  `json:"trigger_keywords"`
	AppearAtSeconds      *int                      `json:"appear_at_seconds"`
	InputDeadlineSeconds *int                      `json:"input_deadline_seconds"`
	DeliveryType         models.RewardDeliveryType `json:"delivery_type" binding:"required,oneof=DOWNLOAD EMAIL LINE COUPON TAG_ADD UNLOCK_CONTENT"`
	DeliveryTarget       *string                   `json:"delivery_target"`
	PopupTitle           *string                   `json:"popup_title"`
	PopupDescription     *string                   `json:"popup_description"`
	PopupButtonText      string                    `json:"popup_button_text"`
	Conditions           []models.RewardCondition  `json:"conditions"`
	ConditionLogic       string                    `json:"condition_logic" binding:"omitempty,oneof=AND OR"`
	MaxClaims            *int                      `json:"max_claims"`
	IsActive             *bool                     `json:"is_active"`
	Position             int                       `json:"position"`
}

func (req *rewardRequest) validateTrigger() string {
	switch req.TriggerType {
	case models.TriggerWatchTime:
		if req.WatchTimeSeconds == nil || *req.WatchTimeSeconds < 0 {
			return "watch_time_seconds is required for WATCH_TIME rewards"
		}
	case models.TriggerKeyword:
		if len(req.TriggerKeywords) == 0 {
			return "trigger_keywords is required for KEYWORD rewards"
		}
	case models.TriggerTimedInput:
		if req.AppearAtSeconds == nil || *req.AppearAtSeconds < 0 {
			return "appear_at_seconds is required for TIMED_INPUT rewards"
		}
	}
	for _, cond := range req.Conditions {
		if !ValidCondition(cond) {
			return "invalid condition type or operator"
		}
	}
	return ""
}

func (req *rewardRequest) toModel(webinarID uuid.UUID) *models.Reward {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	buttonText := req.PopupButtonText
	if buttonText == "" {
		buttonText = "Claim"
	}
	logic := req.ConditionLogic
	if logic == "" {
		logic = "AND"
	}
	return &models.Reward{
		WebinarID:            webinarID,
		Name:                 req.Name,
		Description:          req.Description,
		TriggerType:          req.TriggerType,
		WatchTimeSeconds:     req.WatchTimeSeconds,
		TriggerKeywords:      req.TriggerKeywords,
		AppearAtSeconds:      req.AppearAtSeconds,
		InputDeadlineSeconds: req.InputDeadlineSeconds,
		DeliveryType:         req.DeliveryType,
		DeliveryTarget:       req.DeliveryTarget,
		PopupTitle:           req.PopupTitle,
		PopupDescription:     req.PopupDescription,
		PopupButtonText:      buttonText,
		Conditions:           req.Conditions,
		ConditionLogic:       logic,
		MaxClaims:            req.MaxClaims,
		IsActive:             active,
		Position:             req.Position,
	}
}

// Create adds a reward to a webinar.
func (h *Handler) Create(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if msg := req.validateTrigger(); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	reward := req.toModel(webinarID)
	if err := h.repo.Create(c.Request.Context(), reward); err != nil {
		h.logger.Error("failed to create reward", zap.Error(err))
		response.InternalError(c, "failed to create reward")
		return
	}
	response.Created(c, reward)
}

// List returns all rewards of a webinar.
func (h *Handler) List(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	list, err := h.repo.ListByWebinar(c.Request.Context(), webinarID)
	if err != nil {
		h.logger.Error("failed to list rewards", zap.Error(err))
		response.InternalError(c, "failed to list rewards")
		return
	}
	response.OK(c, gin.H{"rewards": list, "count": len(list)})
}

// Update replaces a reward's configuration.
func (h *Handler) Update(c *gin.Context) {
	rewardID, err := uuid.Parse(c.Param("rewardId"))
	if err != nil {
		response.BadRequest(c, "invalid reward id")
		return
	}
	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if msg := req.validateTrigger(); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), rewardID)
	if err != nil {
		h.logger.Error("failed to load reward", zap.Error(err))
		response.InternalError(c, "failed to update reward")
		return
	}
	if existing == nil {
		response.NotFound(c, "reward not found")
		return
	}
	reward := req.toModel(existing.WebinarID)
	reward.ID = rewardID
	if err := h.repo.Update(c.Request.Context(), reward); err != nil {
		h.logger.Error("failed to update reward", zap.Error(err))
		response.InternalError(c, "failed to update reward")
		return
	}
	response.OK(c, reward)
}

// Delete removes a reward.
func (h *Handler) Delete(c *gin.Context) {
	rewardID, err := uuid.Parse(c.Param("rewardId"))
	if err != nil {
		response.BadRequest(c, "invalid reward id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), rewardID); err != nil {
		h.logger.Error("failed to delete reward", zap.Error(err))
		response.InternalError(c, "failed to delete reward")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}
