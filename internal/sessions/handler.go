package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/config"
	"github.com/marketing-hub/autowebinar/internal/abtest"
	"github.com/marketing-hub/autowebinar/internal/attendees"
	"github.com/marketing-hub/autowebinar/internal/models"
	"github.com/marketing-hub/autowebinar/internal/playback"
	"github.com/marketing-hub/autowebinar/internal/rewards"
	"github.com/marketing-hub/autowebinar/internal/schedule"
	"github.com/marketing-hub/autowebinar/internal/simchat"
	"github.com/marketing-hub/autowebinar/internal/webinars"
	"github.com/marketing-hub/autowebinar/pkg/response"
)

// Notifier schedules the viewer email lifecycle. Scheduling failures are
// logged and never block registration or playback.
type Notifier interface {
	ScheduleForRegistration(ctx context.Context, webinarID, registrationID uuid.UUID, startAt time.Time) error
	ScheduleReplay(ctx context.Context, webinarID, registrationID uuid.UUID, expiresAt *time.Time) error
}

// Handler serves the public registration and watch API. Everything a viewer
// does flows through here, addressed by the opaque watch token instead of an
// account.
type Handler struct {
	repo        *Repository
	webinarRepo *webinars.Repository
	rewardRepo  *rewards.Repository
	rewardSvc   *rewards.Service
	abSvc       *abtest.Service
	chatRepo    *simchat.Repository
	notifier    Notifier
	cfg         config.WebinarConfig
	logger      *zap.Logger
}

func NewHandler(repo *Repository, webinarRepo *webinars.Repository, rewardRepo *rewards.Repository,
	rewardSvc *rewards.Service, abSvc *abtest.Service, chatRepo *simchat.Repository,
	notifier Notifier, cfg config.WebinarConfig, logger *zap.Logger) *Handler {
	return &Handler{
		repo:        repo,
		webinarRepo: webinarRepo,
		rewardRepo:  rewardRepo,
		rewardSvc:   rewardSvc,
		abSvc:       abSvc,
		chatRepo:    chatRepo,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

func mintWatchToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// reusableSession reports whether a re-registering viewer keeps their existing
// watch session instead of getting a fresh one. The session must still be
// usable (token valid, live window not over, not already a replay) and the
// viewer must not have picked a different slot.
func reusableSession(existing *models.WatchSession, selected *time.Time, videoDuration int, now time.Time) bool {
	if existing == nil || existing.IsReplay {
		return false
	}
	if !now.Before(existing.TokenExpiresAt) {
		return false
	}
	if schedule.CanWatchNow(existing.ScheduledStartAt, videoDuration, now).Status == schedule.StatusEnded {
		return false
	}
	return selected == nil || selected.Equal(existing.ScheduledStartAt)
}

type registerRequest struct {
	Email        string     `json:"email" binding:"required,email"`
	FullName     string     `json:"full_name" binding:"required"`
	SelectedTime *time.Time `json:"selected_time"`
}

// Register signs a viewer up for a webinar, resolves their personal start
// time, and issues the watch token.
func (h *Handler) Register(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	webinar, err := h.webinarRepo.GetByID(ctx, webinarID)
	if err != nil {
		h.logger.Error("failed to load webinar", zap.Error(err))
		response.InternalError(c, "registration failed")
		return
	}
	if webinar == nil || webinar.Status != models.WebinarActive {
		response.NotFound(c, "webinar not found")
		return
	}

	reg := &models.Registration{
		WebinarID: webinarID,
		Email:     req.Email,
		FullName:  req.FullName,
	}
	if err := h.repo.UpsertRegistration(ctx, reg); err != nil {
		h.logger.Error("failed to upsert registration", zap.Error(err))
		response.InternalError(c, "registration failed")
		return
	}

	now := time.Now().UTC()

	// Registering twice with the same email returns the existing session as
	// long as it is still watchable and the slot matches.
	existing, err := h.repo.LatestForRegistration(ctx, reg.ID)
	if err != nil {
		h.logger.Error("failed to load existing session", zap.Error(err))
		response.InternalError(c, "registration failed")
		return
	}
	if reusableSession(existing, req.SelectedTime, webinar.VideoDurationSeconds, now) {
		response.OK(c, gin.H{
			"registration_id":    reg.ID,
			"watch_token":        existing.Token,
			"scheduled_start_at": existing.ScheduledStartAt,
			"token_expires_at":   existing.TokenExpiresAt,
		})
		return
	}

	startAt := schedule.ResolveStartAt(webinar.ScheduleType, now, schedule.Options{
		JustInTimeDelayMinutes: webinar.JustInTimeDelayMinutes,
		Recurring:              webinar.RecurringSchedule,
		SpecificDates:          webinar.SpecificDates,
		SelectedTime:           req.SelectedTime,
	})

	token, err := mintWatchToken()
	if err != nil {
		h.logger.Error("failed to mint watch token", zap.Error(err))
		response.InternalError(c, "registration failed")
		return
	}
	session := &models.WatchSession{
		RegistrationID:   reg.ID,
		WebinarID:        webinarID,
		Token:            token,
		ScheduledStartAt: startAt,
		TokenExpiresAt:   now.AddDate(0, 0, h.cfg.WatchTokenExpireDays),
	}
	if err := h.repo.CreateSession(ctx, session); err != nil {
		h.logger.Error("failed to create watch session", zap.Error(err))
		response.InternalError(c, "registration failed")
		return
	}

	if h.notifier != nil {
		if err := h.notifier.ScheduleForRegistration(ctx, webinarID, reg.ID, startAt); err != nil {
			h.logger.Warn("failed to schedule notifications", zap.Error(err))
		}
	}

	h.logger.Info("viewer registered",
		zap.String("webinar_id", webinarID.String()),
		zap.String("registration_id", reg.ID.String()),
		zap.Time("scheduled_start_at", startAt))
	response.Created(c, gin.H{
		"registration_id":    reg.ID,
		"watch_token":        token,
		"scheduled_start_at": startAt,
		"token_expires_at":   session.TokenExpiresAt,
	})
}

// AvailableTimes returns upcoming slots a viewer can pick from.
func (h *Handler) AvailableTimes(c *gin.Context) {
	webinarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid webinar id")
		return
	}
	webinar, err := h.webinarRepo.GetByID(c.Request.Context(), webinarID)
	if err != nil {
		h.logger.Error("failed to load webinar", zap.Error(err))
		response.InternalError(c, "failed to load available times")
		return
	}
	if webinar == nil || webinar.Status != models.WebinarActive {
		response.NotFound(c, "webinar not found")
		return
	}

	count := 5
	if n, ok := intQuery(c, "count"); ok && n > 0 && n <= 20 {
		count = n
	}
	now := time.Now().UTC()

	var times []time.Time
	switch webinar.ScheduleType {
	case schedule.TypeRecurring:
		if webinar.RecurringSchedule != nil {
			times, err = schedule.NextAvailableTimes(*webinar.RecurringSchedule, count, now)
			if err != nil {
				h.logger.Error("failed to resolve recurring times", zap.Error(err))
				response.InternalError(c, "failed to load available times")
				return
			}
		}
	case schedule.TypeSpecificDates:
		times = schedule.NextFromSpecificDates(webinar.SpecificDates, count, now)
	case schedule.TypeJustInTime:
		delay := webinar.JustInTimeDelayMinutes
		if delay <= 0 {
			delay = h.cfg.JustInTimeDelayMinutes
		}
		times = []time.Time{schedule.JustInTimeStart(now, delay)}
	case schedule.TypeOnDemand:
		times = []time.Time{now}
	}
	response.OK(c, gin.H{"schedule_type": webinar.ScheduleType, "times": times})
}

// sessionContext is everything the watch endpoints need per request.
type sessionContext struct {
	session *models.WatchSession
	webinar *models.Webinar
	reg     *models.Registration
}

// loadSession resolves and validates the watch token. It writes the error
// response itself and returns nil when the request cannot proceed.
func (h *Handler) loadSession(c *gin.Context) *sessionContext {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "watch token is required")
		return nil
	}
	ctx := c.Request.Context()
	session, err := h.repo.GetByToken(ctx, token)
	if err != nil {
		h.logger.Error("failed to load watch session", zap.Error(err))
		response.InternalError(c, "failed to load session")
		return nil
	}
	if session == nil {
		response.NotFound(c, "invalid watch token")
		return nil
	}
	now := time.Now().UTC()
	if now.After(session.TokenExpiresAt) {
		response.Unauthorized(c, "watch token expired")
		return nil
	}
	if session.IsReplay && session.ReplayExpiresAt != nil && now.After(*session.ReplayExpiresAt) {
		response.Forbidden(c, "replay no longer available")
		return nil
	}

	webinar, err := h.webinarRepo.GetByID(ctx, session.WebinarID)
	if err != nil {
		h.logger.Error("failed to load webinar", zap.Error(err))
		response.InternalError(c, "failed to load session")
		return nil
	}
	if webinar == nil || webinar.Status == models.WebinarArchived {
		response.NotFound(c, "webinar not found")
		return nil
	}
	return &sessionContext{session: session, webinar: webinar}
}

func (h *Handler) loadRegistration(c *gin.Context, sc *sessionContext) bool {
	reg, err := h.repo.GetRegistration(c.Request.Context(), sc.session.RegistrationID)
	if err != nil || reg == nil {
		h.logger.Error("failed to load registration", zap.Error(err))
		response.InternalError(c, "failed to load session")
		return false
	}
	sc.reg = reg
	return true
}

// Validate reports whether the token holder can watch right now.
func (h *Handler) Validate(c *gin.Context) {
	sc := h.loadSession(c)
	if sc == nil {
		return
	}
	now := time.Now().UTC()
	window := schedule.CanWatchNow(sc.session.ScheduledStartAt, sc.webinar.VideoDurationSeconds, now)

	replayAvailable := false
	if window.Status == schedule.StatusEnded && sc.webinar.ReplayEnabled {
		replayAvailable = true
		if sc.session.ReplayExpiresAt != nil && now.After(*sc.session.ReplayExpiresAt) {
			replayAvailable = false
		}
	}
	response.OK(c, gin.H{
		"window":           window,
		"is_replay":        sc.session.IsReplay,
		"replay_available": replayAvailable,
		"webinar": gin.H{
			"id":            sc.webinar.ID,
			"title":         sc.webinar.Title,
			"thumbnail_url": sc.webinar.ThumbnailURL,
		},
	})
}

// State returns the full watch state for one poll: playback position,
// attendee count, chat delta, and the offer variant. `last` carries the
// position of the previous poll so chat is returned incrementally.
func (h *Handler) State(c *gin.Context) {
	sc := h.loadSession(c)
	if sc == nil {
		return
	}
	ctx := c.Request.Context()
	now := time.Now().UTC()
	state := playback.GetState(sc.session.ScheduledStartAt, sc.webinar.VideoDurationSeconds, now)

	// An ended live session rolls over to replay when replays are on.
	if state.IsEnded && !sc.session.IsReplay && sc.webinar.ReplayEnabled {
		watchEnd := sc.session.ScheduledStartAt.Add(time.Duration(sc.webinar.VideoDurationSeconds) * time.Second)
		expires := schedule.ReplayExpiresAt(watchEnd, sc.webinar.ReplayExpiresHours)
		if err := h.repo.SwitchToReplay(ctx, sc.session.ID, expires); err != nil {
			h.logger.Warn("failed to switch session to replay", zap.Error(err))
		} else if h.notifier != nil {
			if err := h.notifier.ScheduleReplay(ctx, sc.webinar.ID, sc.session.RegistrationID, expires); err != nil {
				h.logger.Warn("failed to schedule replay notifications", zap.Error(err))
			}
		}
	}

	position := state.CurrentPosition
	if sc.session.IsReplay {
		position = sc.session.LastPosition
	}

	simCfg := attendees.Config{
		PeakProgress:    sc.webinar.PeakProgress,
		VariancePercent: sc.webinar.VariancePercent,
		Seed:            sc.webinar.AttendeeSeed,
	}
	progress := 0.0
	if sc.webinar.VideoDurationSeconds > 0 {
		progress = float64(position) / float64(sc.webinar.VideoDurationSeconds)
	}
	count := attendees.Count(sc.webinar.MinAttendees, sc.webinar.MaxAttendees, progress, simCfg)

	last, _ := intQuery(c, "last")
	chatMessages, err := h.chatRepo.ListWindow(ctx, sc.webinar.ID, last, position)
	if err != nil {
		h.logger.Error("failed to load chat window", zap.Error(err))
		response.InternalError(c, "failed to load state")
		return
	}

	var offer gin.H
	if variant, err := h.abSvc.VariantForSession(ctx, sc.webinar.ID, sc.session.ID); err != nil {
		h.logger.Warn("failed to resolve offer variant", zap.Error(err))
	} else if variant != nil {
		offer = gin.H{
			"variant_id":  variant.ID,
			"title":       variant.Title,
			"description": variant.Description,
			"button_text": variant.ButtonText,
			"button_url":  variant.ButtonURL,
		}
	}

	response.OK(c, gin.H{
		"playback":  state,
		"is_replay": sc.session.IsReplay,
		"attendees": gin.H{
			"count":     count,
			"formatted": attendees.FormatCount(count),
		},
		"chat":  chatMessages,
		"offer": offer,
		"completion_percent": playback.CompletionPercent(
			sc.session.MaxWatchedSeconds, sc.webinar.VideoDurationSeconds),
	})
}

type progressRequest struct {
	Position int `json:"position" binding:"min=0"`
}

// Progress records a playback progress report, advances the high-water mark,
// and fires any watch-time rewards the viewer just crossed.
func (h *Handler) Progress(c *gin.Context) {
	sc := h.loadSession(c)
	if sc == nil {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	now := time.Now().UTC()

	position := req.Position
	if position > sc.webinar.VideoDurationSeconds {
		position = sc.webinar.VideoDurationSeconds
	}
	// Live positions are server-authoritative; a report cannot run ahead of
	// the broadcast.
	if !sc.session.IsReplay {
		serverPos := playback.Position(sc.session.ScheduledStartAt, sc.webinar.VideoDurationSeconds, now)
		if position > serverPos {
			position = serverPos
		}
	}

	maxWatched, err := h.repo.UpdateProgress(ctx, sc.session.ID, position)
	if err != nil {
		h.logger.Error("failed to update progress", zap.Error(err))
		response.InternalError(c, "failed to update progress")
		return
	}

	completion := playback.CompletionPercent(maxWatched, sc.webinar.VideoDurationSeconds)
	if completion >= 90 {
		if err := h.repo.MarkCompleted(ctx, sc.session.ID, now); err != nil {
			h.logger.Warn("failed to mark session completed", zap.Error(err))
		}
	}

	claimed := h.fireWatchTimeRewards(c, sc, maxWatched)

	response.OK(c, gin.H{
		"max_watched_seconds": maxWatched,
		"completion_percent":  completion,
		"rewards_claimed":     claimed,
	})
}

// fireWatchTimeRewards claims every watch-time reward the session has newly
// crossed. Reward failures never fail the progress report.
func (h *Handler) fireWatchTimeRewards(c *gin.Context, sc *sessionContext, maxWatched int) []gin.H {
	ctx := c.Request.Context()
	active, err := h.rewardRepo.ListActiveByWebinar(ctx, sc.webinar.ID)
	if err != nil {
		h.logger.Warn("failed to list rewards", zap.Error(err))
		return nil
	}
	if len(active) == 0 {
		return nil
	}
	claimedSet, err := h.rewardSvc.ClaimedSet(ctx, sc.session.ID)
	if err != nil {
		h.logger.Warn("failed to load claims", zap.Error(err))
		return nil
	}
	if !h.loadRegistration(c, sc) {
		return nil
	}

	view := conditionView(sc.session, sc.webinar)
	view.MaxWatchedSeconds = maxWatched
	view.EngagementScore = playback.CompletionPercent(maxWatched, sc.webinar.VideoDurationSeconds)

	var out []gin.H
	for _, reward := range rewards.CheckWatchTime(active, maxWatched, claimedSet) {
		claim, err := h.rewardSvc.ClaimAndDispatch(ctx, reward, sc.session.ID, sc.webinar.ID, sc.reg.Email, view)
		if err != nil {
			h.logger.Warn("failed to claim reward", zap.String("reward_id", reward.ID.String()), zap.Error(err))
			continue
		}
		if claim != nil {
			out = append(out, rewardPopup(reward, claim))
		}
	}
	return out
}

// conditionView snapshots the session attributes that reward conditions
// evaluate against. Engagement is the completion percent of the video.
func conditionView(session *models.WatchSession, webinar *models.Webinar) rewards.SessionView {
	return rewards.SessionView{
		MaxWatchedSeconds:    session.MaxWatchedSeconds,
		VideoDurationSeconds: webinar.VideoDurationSeconds,
		OfferClicked:         session.OfferClicked,
		EngagementScore:      playback.CompletionPercent(session.MaxWatchedSeconds, webinar.VideoDurationSeconds),
		TypedKeywords:        session.TypedKeywords,
	}
}

func rewardPopup(reward models.Reward, claim *models.RewardClaim) gin.H {
	return gin.H{
		"claim_id":          claim.ID,
		"reward_id":         reward.ID,
		"name":              reward.Name,
		"delivery_type":     reward.DeliveryType,
		"delivery_target":   reward.DeliveryTarget,
		"popup_title":       reward.PopupTitle,
		"popup_description": reward.PopupDescription,
		"popup_button_text": reward.PopupButtonText,
		"coupon_code":       claim.CouponCode,
	}
}

type seekRequest struct {
	Position int `json:"position" binding:"min=0"`
}

// Seek validates a seek request. Live viewers are clamped to the broadcast
// position; replay viewers seek freely.
func (h *Handler) Seek(c *gin.Context) {
	sc := h.loadSession(c)
	if sc == nil {
		return
	}
	var req seekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	maxAllowed := playback.Position(sc.session.ScheduledStartAt, sc.webinar.VideoDurationSeconds, time.Now().UTC())
	result := playback.ValidateSeek(req.Position, maxAllowed, sc.session.IsReplay)
	response.OK(c, result)
}

type syncRequest struct {
	ClientPosition int `json:"client_position" binding:"min=0"`
}

// Sync compares a client-reported position against the server clock and tells
// the client whether to correct.
func (h *Handler) Sync(c *gin.Context) {
	sc := h.loadSession(c)
	if sc == nil {
		return
	}
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	serverPos := playback.Position(sc.session.ScheduledStartAt, sc.webinar.VideoDurationSeconds, time.Now().UTC())
	tolerance := h.cfg.SyncToleranceSeconds
	if tolerance <= 0 {
		tolerance = playback.DefaultSyncToleranceSeconds
	}
	response.OK(c, playback.SyncCorrection(req.ClientPosition, serverPos, tolerance))
}

type keywordRequest struct {
	Input string `json:"input" binding:"required"`
}

// Keyword checks typed viewer input against keyword and timed-input rewards.
func (h *Handler) Keyword(c *gin.Context) {
	sc := h.loadSession(c)
	if sc == nil {
		return
	}
	var req keywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()

	// The input history lives on the session for keyword conditions.
	if err := h.repo.AppendKeyword(ctx, sc.session.ID, req.Input); err != nil {
		h.logger.Warn("failed to record keyword", zap.Error(err))
	} else {
		sc.session.TypedKeywords = append(sc.session.TypedKeywords, req.Input)
	}

	active, err := h.rewardRepo.ListActiveByWebinar(ctx, sc.webinar.ID)
	if err != nil {
		h.logger.Error("failed to list rewards", zap.Error(err))
		response.InternalError(c, "failed to check input")
		return
	}
	claimedSet, err := h.rewardSvc.ClaimedSet(ctx, sc.session.ID)
	if err != nil {
		h.logger.Error("failed to load claims", zap.Error(err))
		response.InternalError(c, "failed to check input")
		return
	}

	reward := rewards.CheckKeyword(active, req.Input, claimedSet)
	if reward == nil {
		position := playback.Position(sc.session.ScheduledStartAt, sc.webinar.VideoDurationSeconds, time.Now().UTC())
		if sc.session.IsReplay {
			position = sc.session.LastPosition
		}
		reward = rewards.CheckTimedInput(active, position, claimedSet)
	}
	if reward == nil {
		response.OK(c, gin.H{"matched": false})
		return
	}
	if !h.loadRegistration(c, sc) {
		return
	}
	claim, err := h.rewardSvc.ClaimAndDispatch(ctx, *reward, sc.session.ID, sc.webinar.ID, sc.reg.Email, conditionView(sc.session, sc.webinar))
	if err != nil {
		h.logger.Error("failed to claim reward", zap.Error(err))
		response.InternalError(c, "failed to claim reward")
		return
	}
	if claim == nil {
		response.OK(c, gin.H{"matched": false})
		return
	}
	response.OK(c, gin.H{"matched": true, "reward": rewardPopup(*reward, claim)})
}

// EmbedURL returns the provider embed URL positioned at the current playback
// second.
func (h *Handler) EmbedURL(c *gin.Context) {
	sc := h.loadSession(c)
	if sc == nil {
		return
	}
	position := playback.Position(sc.session.ScheduledStartAt, sc.webinar.VideoDurationSeconds, time.Now().UTC())
	if sc.session.IsReplay {
		position = sc.session.LastPosition
	}
	url := playback.EmbedURL(sc.webinar.VideoURL, sc.webinar.VideoType, playback.EmbedOptions{
		Autoplay:  true,
		Controls:  sc.session.IsReplay,
		StartTime: position,
	})
	response.OK(c, gin.H{"embed_url": url, "video_type": sc.webinar.VideoType, "start_time": position})
}

// OfferClick records the viewer clicking the offer.
func (h *Handler) OfferClick(c *gin.Context) {
	sc := h.loadSession(c)
	if sc == nil {
		return
	}
	ctx := c.Request.Context()
	first, err := h.repo.MarkOfferClicked(ctx, sc.session.ID)
	if err != nil {
		h.logger.Error("failed to mark offer click", zap.Error(err))
		response.InternalError(c, "failed to record click")
		return
	}
	if err := h.abSvc.RecordClick(ctx, sc.webinar.ID, sc.session.ID); err != nil {
		h.logger.Warn("failed to record ab click", zap.Error(err))
	}
	response.OK(c, gin.H{"recorded": true, "first_click": first})
}

// OfferConvert records a conversion attributed to the session's variant.
func (h *Handler) OfferConvert(c *gin.Context) {
	sc := h.loadSession(c)
	if sc == nil {
		return
	}
	if err := h.abSvc.RecordConversion(c.Request.Context(), sc.webinar.ID, sc.session.ID); err != nil {
		h.logger.Error("failed to record conversion", zap.Error(err))
		response.InternalError(c, "failed to record conversion")
		return
	}
	response.OK(c, gin.H{"recorded": true})
}

func intQuery(c *gin.Context, name string) (int, bool) {
	s := c.Query(name)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
