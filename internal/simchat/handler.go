package simchat

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/pkg/response"
)

// Handler exposes admin endpoints for managing simulated chat timelines.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type createMessageRequest struct {
	AppearAtSeconds int         `json:"appear_at_seconds" binding:"min=0"`
	SenderName      string      `json:"sender_name" binding:"required"`
	SenderAvatar    *string     `json:"sender_avatar"`
	Content         string      `json:"content" binding:"required"`
	Type            MessageType `json:"type"`
	Position        int         `json:"position"`
}

// Create adds a single message to a webinar timeline.
func (h *Handler) Create(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	msgType := req.Type
	if msgType == "" {
		msgType = TypeComment
	}
	msg := &Message{
		WebinarID:       webinarID,
		AppearAtSeconds: req.AppearAtSeconds,
		SenderName:      req.SenderName,
		SenderAvatar:    req.SenderAvatar,
		Content:         req.Content,
		Type:            msgType,
		Position:        req.Position,
	}
	if err := h.repo.Create(c.Request.Context(), msg); err != nil {
		h.logger.Error("failed to create chat message", zap.Error(err))
		response.InternalError(c, "failed to create message")
		return
	}
	response.Created(c, msg)
}

// List returns the full timeline for a webinar.
func (h *Handler) List(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	messages, err := h.repo.ListByWebinar(c.Request.Context(), webinarID)
	if err != nil {
		h.logger.Error("failed to list chat messages", zap.Error(err))
		response.InternalError(c, "failed to list messages")
		return
	}
	response.OK(c, gin.H{"messages": messages, "count": len(messages)})
}

// Import ingests a CSV timeline. By default it replaces the existing
// timeline; pass ?append=true to keep existing messages.
func (h *Handler) Import(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "csv file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 10<<20))
	if err != nil {
		response.BadRequest(c, "failed to read upload")
		return
	}

	drafts, skipped := ParseCSV(string(data))
	if len(drafts) == 0 {
		response.BadRequest(c, "no valid rows found in csv")
		return
	}

	ctx := c.Request.Context()
	if c.Query("append") != "true" {
		if err := h.repo.DeleteByWebinar(ctx, webinarID); err != nil {
			h.logger.Error("failed to clear chat timeline", zap.Error(err))
			response.InternalError(c, "failed to import messages")
			return
		}
	}

	imported, err := h.repo.CreateBatch(ctx, webinarID, drafts)
	if err != nil {
		h.logger.Error("failed to import chat messages", zap.Error(err))
		response.InternalError(c, "failed to import messages")
		return
	}

	h.logger.Info("chat timeline imported",
		zap.String("webinar_id", webinarID.String()),
		zap.Int("imported", imported),
		zap.Int("skipped", skipped))
	response.OK(c, gin.H{"imported": imported, "skipped": skipped})
}

// DistributionReport returns message density buckets for the editor timeline view.
func (h *Handler) DistributionReport(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	type distQuery struct {
		Duration int `form:"duration" binding:"required,min=1"`
		Buckets  int `form:"buckets"`
	}
	var q distQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	messages, err := h.repo.ListByWebinar(c.Request.Context(), webinarID)
	if err != nil {
		h.logger.Error("failed to list chat messages", zap.Error(err))
		response.InternalError(c, "failed to compute distribution")
		return
	}
	response.OK(c, gin.H{"buckets": Distribution(messages, q.Duration, q.Buckets)})
}

// Delete removes one message from a timeline.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		response.BadRequest(c, "invalid message id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("failed to delete chat message", zap.Error(err))
		response.InternalError(c, "failed to delete message")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}
