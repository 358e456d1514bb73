package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"desayunos/internal/amqp"
	"desayunos/internal/cache"
	"desayunos/internal/config"
	applog "desayunos/internal/log"
	"desayunos/internal/storage"
	"desayunos/internal/store/firestore"
	"desayunos/internal/worker"
)

func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting desayunos-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.FirestoreProjectID == "" {
		logger.Error("FIRESTORE_PROJECT_ID is required for the sync worker")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			"error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	mirror, err := firestore.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Firestore client", "error", err)
		os.Exit(1)
	}
	logger.Info("Firestore client initialized",
		"project_id", cfg.FirestoreProjectID,
		"collection", cfg.FirestoreCollection)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	cacheManager := cache.NewManager()
	cacheManager.Register(mirror.ListCache())
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	syncWorker := worker.NewSyncWorker(sqliteRepo, mirror, cfg.SyncBatchSize)

	// Entries written while the worker was down are mirrored before
	// consumption starts.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
		// Keep going, the periodic scan will retry.
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeEntryEvents(gctx, func(msg *amqp.EntryEventMessage) error {
			return syncWorker.HandleEvent(gctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := syncWorker.ProcessPending(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
