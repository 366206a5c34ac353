package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheAdapter "go-courier/internal/infrastructure/cache/adapter"
	"go-courier/internal/infrastructure/database"
	pushAdapter "go-courier/internal/infrastructure/push/adapter"
	pport "go-courier/internal/infrastructure/push/port"
	queueAdapter "go-courier/internal/infrastructure/queue/adapter"
	"go-courier/internal/infrastructure/realtime"
	"go-courier/internal/pkg/notification/application/task"
	notifAdapter "go-courier/internal/pkg/notification/persistence/repository/adapter"
	userAdapter "go-courier/internal/pkg/user/persistence/repository/adapter"

	"github.com/joho/godotenv"
)

// Standalone delivery worker. It holds no client sessions, so socket pushes
// no-op here and jobs resolve to push or in-app delivery; run it to drain the
// notifications queue independently of the API nodes.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found or could not be loaded", "err", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := database.NewClientFromEnv(ctx)
	if err != nil {
		logger.Error("mongo connection failed", "err", err)
		os.Exit(1)
	}
	db := database.Database(client, os.Getenv("MONGO_URL"))

	cache, err := cacheAdapter.NewRedisAdapter()
	if err != nil {
		logger.Error("redis connection failed", "err", err)
		os.Exit(1)
	}

	var push pport.Provider
	if p, err := pushAdapter.NewFCMProviderFromEnv(ctx); err != nil {
		logger.Warn("fcm disabled", "err", err)
	} else {
		push = p
	}

	srv, err := queueAdapter.NewAsynqServer(logger)
	if err != nil {
		logger.Error("queue server init failed", "err", err)
		os.Exit(1)
	}

	deliver := task.NewDeliverNotificationTask(
		notifAdapter.NewMongoNotificationRepository(db),
		userAdapter.NewMongoUserRepository(db),
		push,
		realtime.NewRegistry(),
		cache,
		logger,
	)
	deliver.Register(srv)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started")
	if err := srv.Run(runCtx); err != nil {
		logger.Error("worker stopped", "err", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = cache.Close()
	_ = client.Disconnect(shutdownCtx)
}
