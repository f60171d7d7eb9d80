package notifications

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/internal/models"
	"github.com/marketing-hub/autowebinar/pkg/response"
)

// Handler exposes admin configuration of a webinar's notifications.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type settingsRequest struct {
	IsEnabled           bool `json:"is_enabled"`
	Reminder30Min       bool `json:"reminder_30min"`
	Reminder5Min        bool `json:"reminder_5min"`
	Reminder1Min        bool `json:"reminder_1min"`
	StartingNow         bool `json:"starting_now"`
	ReplayAvailable     bool `json:"replay_available"`
	ReplayExpiring      bool `json:"replay_expiring"`
	ReplayExpiringHours int  `json:"replay_expiring_hours" binding:"omitempty,min=1"`
}

// GetSettings handles GET /webinars/:id/notification-settings.
func (h *Handler) GetSettings(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	settings, err := h.repo.GetSettings(c.Request.Context(), webinarID)
	if err != nil {
		h.logger.Error("failed to load notification settings", zap.Error(err))
		response.InternalError(c, "failed to load notification settings")
		return
	}
	response.OK(c, settings)
}

// UpdateSettings handles PUT /webinars/:id/notification-settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	hours := req.ReplayExpiringHours
	if hours == 0 {
		hours = 24
	}
	settings := models.NotificationSettings{
		WebinarID:           webinarID,
		IsEnabled:           req.IsEnabled,
		Reminder30Min:       req.Reminder30Min,
		Reminder5Min:        req.Reminder5Min,
		Reminder1Min:        req.Reminder1Min,
		StartingNow:         req.StartingNow,
		ReplayAvailable:     req.ReplayAvailable,
		ReplayExpiring:      req.ReplayExpiring,
		ReplayExpiringHours: hours,
	}
	if err := h.repo.UpsertSettings(c.Request.Context(), &settings); err != nil {
		h.logger.Error("failed to save notification settings", zap.Error(err))
		response.InternalError(c, "failed to save notification settings")
		return
	}
	response.OK(c, settings)
}
