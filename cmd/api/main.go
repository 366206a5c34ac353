package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "go-courier/cmd/api/router/v1"
	"go-courier/internal/infrastructure/auth"
	cacheAdapter "go-courier/internal/infrastructure/cache/adapter"
	"go-courier/internal/infrastructure/database"
	pushAdapter "go-courier/internal/infrastructure/push/adapter"
	pport "go-courier/internal/infrastructure/push/port"
	queueAdapter "go-courier/internal/infrastructure/queue/adapter"
	"go-courier/internal/infrastructure/realtime"
	chatbotAdapter "go-courier/internal/pkg/chatbot/adapter"
	"go-courier/internal/pkg/notification/application/task"
	notifAdapter "go-courier/internal/pkg/notification/persistence/repository/adapter"
	userAdapter "go-courier/internal/pkg/user/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

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

	queueClient, err := queueAdapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Error("queue client init failed", "err", err)
		os.Exit(1)
	}

	verifier, err := auth.NewVerifierFromEnv()
	if err != nil {
		logger.Error("token verifier init failed", "err", err)
		os.Exit(1)
	}

	responder, err := chatbotAdapter.NewHTTPResponderFromEnv()
	if err != nil {
		logger.Error("responder init failed", "err", err)
		os.Exit(1)
	}

	// Push delivery is optional: without credentials the pipeline still
	// persists in-app notifications and pushes over live sockets.
	var push pport.Provider
	if p, err := pushAdapter.NewFCMProviderFromEnv(ctx); err != nil {
		logger.Warn("fcm disabled", "err", err)
	} else {
		push = p
	}

	registry := realtime.NewRegistry()

	// The API binary runs the delivery worker in-process so socket and badge
	// pushes reach sessions connected to this node.
	worker, err := queueAdapter.NewAsynqServer(logger)
	if err != nil {
		logger.Error("queue server init failed", "err", err)
		os.Exit(1)
	}
	deliver := task.NewDeliverNotificationTask(
		notifAdapter.NewMongoNotificationRepository(db),
		userAdapter.NewMongoUserRepository(db),
		push,
		registry,
		cache,
		logger,
	)
	deliver.Register(worker)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := worker.Run(runCtx); err != nil {
			logger.Error("worker stopped", "err", err)
			stop()
		}
	}()

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, v1.Deps{
		DB:        db,
		Registry:  registry,
		Verifier:  verifier,
		Cache:     cache,
		Queue:     queueClient,
		Responder: responder,
		Logger:    logger,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "err", err)
			stop()
		}
	}()

	logger.Info("listening", "port", port)
	<-runCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	registry.Close()
	_ = queueClient.Close()
	_ = cache.Close()
	_ = client.Disconnect(shutdownCtx)
}
