package v1

import (
	"log/slog"

	"go-courier/internal/infrastructure/auth"
	cport "go-courier/internal/infrastructure/cache/port"
	qport "go-courier/internal/infrastructure/queue/port"
	"go-courier/internal/infrastructure/realtime"
	chathttp "go-courier/internal/pkg/chat/presentation/http"
	chatadapter "go-courier/internal/pkg/chat/persistence/repository/adapter"
	chatbot "go-courier/internal/pkg/chatbot/port"
	notifusecase "go-courier/internal/pkg/notification/application/usecase"
	notifadapter "go-courier/internal/pkg/notification/persistence/repository/adapter"
	notifhttp "go-courier/internal/pkg/notification/presentation/http"
	useradapter "go-courier/internal/pkg/user/persistence/repository/adapter"
	userhttp "go-courier/internal/pkg/user/presentation/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// Deps carries the shared infrastructure handed down from main.
type Deps struct {
	DB        *mongo.Database
	Registry  realtime.SessionRegistry
	Verifier  *auth.Verifier
	Cache     cport.Cache
	Queue     qport.Client
	Responder chatbot.Responder
	Logger    *slog.Logger
}

// RegisterRoutes mounts all version 1 API routes under /api/v1.
func RegisterRoutes(r *gin.Engine, d Deps) {
	chatRepo := chatadapter.NewMongoChatRepository(d.DB)
	userRepo := useradapter.NewMongoUserRepository(d.DB)
	notifRepo := notifadapter.NewMongoNotificationRepository(d.DB)
	scheduler := notifusecase.NewScheduleNotificationUseCase(d.Queue, d.Logger)

	api := r.Group("/api/v1")

	chathttp.RegisterRoutes(api, chathttp.Deps{
		Repo:      chatRepo,
		Users:     userRepo,
		Responder: d.Responder,
		Registry:  d.Registry,
		Verifier:  d.Verifier,
		Cache:     d.Cache,
		Scheduler: scheduler,
		Logger:    d.Logger,
	})
	userhttp.RegisterRoutes(api, userRepo, d.Cache, d.Verifier)
	notifhttp.RegisterRoutes(api, notifRepo, d.Cache, d.Registry, d.Verifier, d.Logger)
}
