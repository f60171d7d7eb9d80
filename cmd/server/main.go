// Package main runs the auto-webinar HTTP server with WebSocket push and
// graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/marketing-hub/autowebinar/config"
	"github.com/marketing-hub/autowebinar/internal/abtest"
	"github.com/marketing-hub/autowebinar/internal/auth"
	"github.com/marketing-hub/autowebinar/internal/middleware"
	"github.com/marketing-hub/autowebinar/internal/notifications"
	"github.com/marketing-hub/autowebinar/internal/realtime"
	"github.com/marketing-hub/autowebinar/internal/rewards"
	"github.com/marketing-hub/autowebinar/internal/sessions"
	"github.com/marketing-hub/autowebinar/internal/simchat"
	"github.com/marketing-hub/autowebinar/internal/webinars"
	"github.com/marketing-hub/autowebinar/pkg/database"
	"github.com/marketing-hub/autowebinar/pkg/kvstore"
	"github.com/marketing-hub/autowebinar/pkg/queue"
	"github.com/marketing-hub/autowebinar/pkg/redis"
	"github.com/marketing-hub/autowebinar/pkg/response"
	"github.com/marketing-hub/autowebinar/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			VideosBucket:         cfg.AWS.VideosBucket,
			AssetsBucket:         cfg.AWS.AssetsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	limiterStore := kvstore.NewRedis(rdb.Client)

	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Webinars (admin)
	webinarRepo := webinars.NewRepository(pool)
	webinarHandler := webinars.NewHandler(webinarRepo, s3Client, logger)

	// Simulated chat
	chatRepo := simchat.NewRepository(pool)
	chatHandler := simchat.NewHandler(chatRepo, logger)

	// Rewards
	jobQueue := queue.NewQueue(rdb.Client, logger)
	rewardRepo := rewards.NewRepository(pool)
	rewardSvc := rewards.NewService(rewardRepo, jobQueue, logger)
	rewardHandler := rewards.NewHandler(rewardRepo, logger)

	// Offer A/B tests
	abRepo := abtest.NewRepository(pool)
	abSvc := abtest.NewService(abRepo, logger)
	abHandler := abtest.NewHandler(abRepo, abSvc, logger)

	// Viewer notifications
	notifRepo := notifications.NewRepository(pool)
	notifScheduler := notifications.NewScheduler(notifRepo, logger)
	notifHandler := notifications.NewHandler(notifRepo, logger)

	// Registrations and watch sessions (public)
	sessionRepo := sessions.NewRepository(pool)
	sessionHandler := sessions.NewHandler(sessionRepo, webinarRepo, rewardRepo, rewardSvc, abSvc, chatRepo, notifScheduler, cfg.Webinar, logger)

	// Watch-room push loops
	broadcaster := realtime.NewBroadcaster(hub, webinarRepo, chatRepo, cfg.Webinar.PushIntervalSeconds, logger)
	hub.SetViewerChangeHandler(broadcaster.HandleViewerChange)
	defer broadcaster.Stop()

	validateWatchToken := func(token string) (uuid.UUID, uuid.UUID, error) {
		session, err := sessionRepo.GetByToken(context.Background(), token)
		if err != nil {
			return uuid.Nil, uuid.Nil, err
		}
		if session == nil || time.Now().After(session.TokenExpiresAt) {
			return uuid.Nil, uuid.Nil, errors.New("invalid watch token")
		}
		return session.WebinarID, session.ID, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: registration and schedule discovery
	registerLimit := middleware.RateLimit(limiterStore, "register", cfg.RateLimit.RegisterPerMinute, logger)
	router.POST("/webinars/:id/register", registerLimit, sessionHandler.Register)
	router.GET("/webinars/:id/available-times", sessionHandler.AvailableTimes)

	// Public: watch API, addressed by watch token
	watchLimit := middleware.RateLimit(limiterStore, "watch", cfg.RateLimit.WatchPerMinute, logger)
	watch := router.Group("/watch/:token")
	watch.Use(watchLimit)
	{
		watch.GET("/validate", sessionHandler.Validate)
		watch.GET("/state", sessionHandler.State)
		watch.GET("/embed-url", sessionHandler.EmbedURL)
		watch.POST("/progress", sessionHandler.Progress)
		watch.POST("/seek", sessionHandler.Seek)
		watch.POST("/sync", sessionHandler.Sync)
		watch.POST("/keyword", sessionHandler.Keyword)
		watch.POST("/offer/click", sessionHandler.OfferClick)
		watch.POST("/offer/convert", sessionHandler.OfferConvert)
	}

	// Admin API (JWT required)
	api := router.Group("")
	api.Use(middleware.Auth(jwtService))
	{
		api.GET("/webinars", webinarHandler.List)
		api.POST("/webinars", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), webinarHandler.Create)
		api.GET("/webinars/:id", webinarHandler.GetByID)
		api.PATCH("/webinars/:id", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), webinarHandler.Update)
		api.PATCH("/webinars/:id/status", middleware.RequireRole(auth.RoleAdmin), webinarHandler.SetStatus)
		api.DELETE("/webinars/:id", middleware.RequireRole(auth.RoleAdmin), webinarHandler.Delete)
		api.GET("/webinars/:id/attendee-timeline", webinarHandler.AttendeeTimeline)
		api.POST("/webinars/:id/generate-upload-url", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), webinarHandler.GenerateUploadURL)
		api.GET("/webinars/:id/video-url", webinarHandler.GenerateVideoURL)

		// Simulated chat timelines
		api.GET("/webinars/:id/chat", chatHandler.List)
		api.POST("/webinars/:id/chat", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), chatHandler.Create)
		api.POST("/webinars/:id/chat/import", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), chatHandler.Import)
		api.GET("/webinars/:id/chat/distribution", chatHandler.DistributionReport)
		api.DELETE("/webinars/:id/chat/:messageId", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), chatHandler.Delete)

		// Rewards
		api.GET("/webinars/:id/rewards", rewardHandler.List)
		api.POST("/webinars/:id/rewards", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), rewardHandler.Create)
		api.PATCH("/webinars/:id/rewards/:rewardId", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), rewardHandler.Update)
		api.DELETE("/webinars/:id/rewards/:rewardId", middleware.RequireRole(auth.RoleAdmin), rewardHandler.Delete)

		// Offer A/B tests
		api.GET("/webinars/:id/ab-tests", abHandler.List)
		api.POST("/webinars/:id/ab-tests", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), abHandler.Create)
		api.PATCH("/ab-tests/:testId/status", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), abHandler.SetStatus)
		api.GET("/ab-tests/:testId/analysis", abHandler.Analyze)

		// Viewer notification settings
		api.GET("/webinars/:id/notification-settings", notifHandler.GetSettings)
		api.PUT("/webinars/:id/notification-settings", middleware.RequireRole(auth.RoleAdmin, auth.RoleEditor), notifHandler.UpdateSettings)

		// Live connection stats for this instance
		api.GET("/realtime/rooms", realtime.LiveStats(hub))
	}

	// WebSocket watch stream (watch token in query)
	router.GET("/ws/watch", realtime.ServeWs(hub, logger, validateWatchToken))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
