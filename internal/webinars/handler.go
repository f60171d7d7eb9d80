package webinars

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/internal/attendees"
	"github.com/marketing-hub/autowebinar/internal/middleware"
	"github.com/marketing-hub/autowebinar/internal/models"
	"github.com/marketing-hub/autowebinar/internal/playback"
	"github.com/marketing-hub/autowebinar/internal/schedule"
	"github.com/marketing-hub/autowebinar/pkg/response"
	"github.com/marketing-hub/autowebinar/pkg/storage"
)

// CreateRequest is the body for POST /webinars.
type CreateRequest struct {
	Title                  string                      `json:"title" binding:"required,max=200"`
	Description            string                      `json:"description"`
	ThumbnailURL           *string                     `json:"thumbnail_url"`
	VideoURL               string                      `json:"video_url" binding:"required,url"`
	VideoType              *playback.VideoType         `json:"video_type"` // detected from URL when omitted
	VideoDurationSeconds   int                         `json:"video_duration_seconds" binding:"required,min=1,max=86400"`
	ScheduleType           schedule.Type               `json:"schedule_type"`
	JustInTimeDelayMinutes int                         `json:"just_in_time_delay_minutes" binding:"max=10080"`
	RecurringSchedule      *schedule.RecurringSchedule `json:"recurring_schedule"`
	SpecificDates          []string                    `json:"specific_dates"`
	ReplayEnabled          *bool                       `json:"replay_enabled"`
	ReplayExpiresHours     *int                        `json:"replay_expires_hours"`
	MinAttendees           int                         `json:"min_attendees"`
	MaxAttendees           int                         `json:"max_attendees"`
	PeakProgress           *float64                    `json:"peak_progress"`
	VariancePercent        *float64                    `json:"variance_percent"`
	AttendeeSeed           *int64                      `json:"attendee_seed"`
}

// Handler handles webinar admin endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a webinars handler. s3 may be nil (uploads disabled).
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, logger: logger}
}

func (req *CreateRequest) toModel(creator uuid.UUID) (*models.Webinar, error) {
	w := &models.Webinar{
		Title:                  req.Title,
		Description:            req.Description,
		ThumbnailURL:           req.ThumbnailURL,
		VideoURL:               req.VideoURL,
		VideoDurationSeconds:   req.VideoDurationSeconds,
		Status:                 models.WebinarDraft,
		ScheduleType:           req.ScheduleType,
		JustInTimeDelayMinutes: req.JustInTimeDelayMinutes,
		RecurringSchedule:      req.RecurringSchedule,
		SpecificDates:          req.SpecificDates,
		ReplayEnabled:          true,
		ReplayExpiresHours:     req.ReplayExpiresHours,
		MinAttendees:           req.MinAttendees,
		MaxAttendees:           req.MaxAttendees,
		PeakProgress:           attendees.DefaultPeakProgress,
		VariancePercent:        attendees.DefaultVariancePercent,
		AttendeeSeed:           req.AttendeeSeed,
		CreatedBy:              creator,
	}
	if req.VideoType != nil {
		w.VideoType = *req.VideoType
	} else {
		w.VideoType = playback.DetectVideoType(req.VideoURL)
	}
	if w.ScheduleType == "" {
		w.ScheduleType = schedule.TypeJustInTime
	}
	if w.JustInTimeDelayMinutes <= 0 {
		w.JustInTimeDelayMinutes = schedule.DefaultJustInTimeDelayMinutes
	}
	if req.ReplayEnabled != nil {
		w.ReplayEnabled = *req.ReplayEnabled
	}
	if req.PeakProgress != nil {
		w.PeakProgress = *req.PeakProgress
	}
	if req.VariancePercent != nil {
		w.VariancePercent = *req.VariancePercent
	}

	bounds := attendees.Bounds{Min: w.MinAttendees, Max: w.MaxAttendees}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	curve := attendees.Config{PeakProgress: w.PeakProgress, VariancePercent: w.VariancePercent}
	if err := curve.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Create handles POST /webinars.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	creator, _ := uuid.Parse(c.GetString(middleware.ContextUserID))
	w, err := req.toModel(creator)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.repo.Create(c.Request.Context(), w); err != nil {
		h.logger.Error("create webinar failed", zap.Error(err))
		response.InternalError(c, "failed to create webinar")
		return
	}
	response.Created(c, w)
}

// List handles GET /webinars.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list webinars failed", zap.Error(err))
		response.InternalError(c, "failed to list webinars")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /webinars/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	w, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get webinar failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.InternalError(c, "failed to load webinar")
		return
	}
	if w == nil {
		response.NotFound(c, "webinar not found")
		return
	}
	response.OK(c, w)
}

// Update handles PATCH /webinars/:id. The request carries the full editable
// config; unspecified curve values keep their stored defaults.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || existing == nil {
		response.NotFound(c, "webinar not found")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	w, err := req.toModel(existing.CreatedBy)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	w.ID = existing.ID
	w.Status = existing.Status
	w.VideoS3Key = existing.VideoS3Key
	if req.PeakProgress == nil {
		w.PeakProgress = existing.PeakProgress
	}
	if req.VariancePercent == nil {
		w.VariancePercent = existing.VariancePercent
	}
	if err := h.repo.Update(c.Request.Context(), w); err != nil {
		h.logger.Error("update webinar failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.InternalError(c, "failed to update webinar")
		return
	}
	response.OK(c, w)
}

// SetStatus handles PATCH /webinars/:id/status.
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var req struct {
		Status models.WebinarStatus `json:"status" binding:"required,oneof=DRAFT ACTIVE PAUSED ARCHIVED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		h.logger.Error("set webinar status failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.InternalError(c, "failed to update status")
		return
	}
	response.OK(c, gin.H{"id": id, "status": req.Status})
}

// Delete handles DELETE /webinars/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete webinar failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.InternalError(c, "failed to delete webinar")
		return
	}
	response.NoContent(c)
}

// AttendeeTimeline handles GET /webinars/:id/attendee-timeline. Returns the
// simulated audience curve for the editor preview.
func (h *Handler) AttendeeTimeline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	w, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || w == nil {
		response.NotFound(c, "webinar not found")
		return
	}
	cfg := attendees.Config{
		PeakProgress:    w.PeakProgress,
		VariancePercent: w.VariancePercent,
		Seed:            w.AttendeeSeed,
	}
	timeline := attendees.Timeline(w.MinAttendees, w.MaxAttendees, w.VideoDurationSeconds, 30, cfg)
	response.OK(c, gin.H{
		"timeline":       timeline,
		"predicted_peak": attendees.PredictPeak(w.MinAttendees, w.MaxAttendees, cfg),
	})
}

// GenerateUploadURL handles POST /webinars/:id/video/upload-url. Returns a
// presigned PUT URL for direct upload of a self-hosted video.
func (h *Handler) GenerateUploadURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "uploads not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var req struct {
		Filename    string `json:"filename" binding:"required"`
		ContentType string `json:"content_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !storage.ValidateVideoFileType(req.ContentType, req.Filename) {
		response.BadRequest(c, "unsupported video format")
		return
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(req.Filename)
	}
	key := storage.VideoKey(id.String(), req.Filename)
	uploadURL, err := h.s3.PresignUpload(c.Request.Context(), h.s3.VideosBucket(), key, contentType, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign upload failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.InternalError(c, "failed to generate upload url")
		return
	}
	response.OK(c, gin.H{"upload_url": uploadURL, "s3_key": key, "content_type": contentType})
}

// GenerateVideoURL handles GET /webinars/:id/video/download-url for UPLOAD
// videos stored in S3.
func (h *Handler) GenerateVideoURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "uploads not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	w, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || w == nil {
		response.NotFound(c, "webinar not found")
		return
	}
	if w.VideoS3Key == nil {
		response.NotFound(c, "webinar has no uploaded video")
		return
	}
	url, err := h.s3.PresignDownload(c.Request.Context(), h.s3.VideosBucket(), *w.VideoS3Key, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign download failed", zap.Error(err), zap.String("webinar_id", id.String()))
		response.InternalError(c, "failed to generate video url")
		return
	}
	response.OK(c, gin.H{"video_url": url})
}
