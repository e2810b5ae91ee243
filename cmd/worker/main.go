package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"intake/internal/config"
	"intake/internal/logging"
	"intake/internal/notify"
	"intake/internal/queue"
	"intake/internal/store"
)

// Worker consumes admission and appointment notifications from Redis.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.QueueBackend != "redis" {
		logger.Fatal("worker needs QUEUE_BACKEND=redis; the memory queue is consumed inside the API process",
			zap.String("queue_backend", cfg.QueueBackend))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = rdb.Close() }()
	if !rdb.Healthy(ctx) {
		logger.Warn("redis not reachable yet, will keep polling", zap.String("addr", cfg.RedisAddr))
	}

	q := queue.NewRedisQueue(rdb.Client, cfg.QueueKey)
	w := notify.NewWorker(q, logger.Named("worker"))
	if err := w.Run(ctx); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}
