package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"intake/internal/admission"
	"intake/internal/auth"
	"intake/internal/config"
	"intake/internal/functions"
	"intake/internal/handler"
	"intake/internal/logging"
	"intake/internal/notify"
	"intake/internal/queue"
	"intake/internal/store"
	"intake/internal/vapi"
	"intake/internal/webhook"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func run(cfg config.App, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	q, closeQueue := openQueue(ctx, cfg, logger)
	defer closeQueue()

	// With the memory queue nothing else can consume, so run the worker here.
	workerDone := make(chan struct{})
	if mem, ok := q.(*queue.InMemory); ok {
		go func() {
			defer close(workerDone)
			if err := notify.NewWorker(mem, logger.Named("worker")).Run(ctx); err != nil {
				logger.Error("notification worker failed", zap.Error(err))
			}
		}()
	} else {
		close(workerDone)
	}

	creds, err := auth.NewCredentialStore(cfg.AdminFile, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("admin credentials: %w", err)
	}

	admissions := admission.NewService(records, logger.Named("admission"))
	dispatcher := functions.NewDispatcher(admissions, notify.NewQueuePublisher(q, logger), logger.Named("functions"))
	events := webhook.NewRouter(dispatcher, logger.Named("webhook"))
	calls := vapi.New(cfg.VapiAPIURL, cfg.VapiAPIKey, cfg.VapiTimeout)

	h := handler.New(cfg, admissions, events, creds, calls, logger.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.VapiTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("webhook", "/api/vapi/webhook"),
			zap.String("store", cfg.StoreBackend),
			zap.String("queue", cfg.QueueBackend),
			zap.Bool("vapi_configured", cfg.VapiConfigured()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}
	<-workerDone
	logger.Info("server exited")
	return nil
}

func openStore(ctx context.Context, cfg config.App, logger *zap.Logger) (admission.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("using in-memory admission store, records are lost on restart")
		return admission.NewMemoryStore(), func() {}, nil
	case "postgres":
		db, err := store.NewDB(ctx, cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}
		pg := admission.NewPostgresStore(db.Client)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg, func() { _ = db.Close() }, nil
	case "file", "":
		fs, err := admission.NewFileStore(cfg.AdmissionsFile, logger.Named("filestore"))
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func openQueue(ctx context.Context, cfg config.App, logger *zap.Logger) (queue.Queue, func()) {
	if cfg.QueueBackend == "redis" {
		rdb := store.NewRedis(cfg.RedisAddr)
		if !rdb.Healthy(ctx) {
			logger.Warn("redis not reachable, notifications will be dropped until it is", zap.String("addr", cfg.RedisAddr))
		}
		return queue.NewRedisQueue(rdb.Client, cfg.QueueKey), func() { _ = rdb.Close() }
	}
	return queue.NewInMemory(cfg.QueueBuffer), func() {}
}
