// Package main runs the background job worker (reward delivery, emails).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/marketing-hub/autowebinar/config"
	"github.com/marketing-hub/autowebinar/internal/notifications"
	"github.com/marketing-hub/autowebinar/internal/rewards"
	"github.com/marketing-hub/autowebinar/pkg/database"
	"github.com/marketing-hub/autowebinar/pkg/queue"
	"github.com/marketing-hub/autowebinar/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	rewardRepo := rewards.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	sender := rewards.NewLogSender(logger)
	deliverer := rewards.NewDeliverer(sender, sender, sender, sender, logger)
	processor := rewards.NewProcessor(rewardRepo, deliverer, sender, jobQueue, logger)

	notifRepo := notifications.NewRepository(pool)
	dispatcher := notifications.NewDispatcher(notifRepo, jobQueue, notifications.DefaultPollInterval, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	go dispatcher.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
