package http

import (
	"log/slog"

	"go-courier/internal/infrastructure/auth"
	cport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/infrastructure/realtime"
	"go-courier/internal/pkg/chat/presentation/controller"
	chatrepo "go-courier/internal/pkg/chat/persistence/repository/port"
	chatbot "go-courier/internal/pkg/chatbot/port"
	notifusecase "go-courier/internal/pkg/notification/application/usecase"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// Deps bundles what the chat endpoints need. The socket endpoint performs its
// own token check during the upgrade, so it is mounted outside the auth
// middleware group.
type Deps struct {
	Repo      chatrepo.ChatRepository
	Users     userrepo.UserRepository
	Responder chatbot.Responder
	Registry  realtime.SessionRegistry
	Verifier  *auth.Verifier
	Cache     cport.Cache
	Scheduler *notifusecase.ScheduleNotificationUseCase
	Logger    *slog.Logger
}

// RegisterRoutes mounts the chat REST endpoints and the realtime socket under
// the given router group.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	createCtl := controller.NewCreateConversationController(d.Repo, d.Registry)
	listCtl := controller.NewListConversationsController(d.Repo, d.Users)
	messagesCtl := controller.NewGetMessagesController(d.Repo)
	participantCtl := controller.NewConversationParticipantController(d.Repo, d.Registry)
	settingsCtl := controller.NewConversationSettingsController(d.Users)
	socketCtl := controller.NewChatSocketController(
		d.Repo, d.Users, d.Responder, d.Registry, d.Verifier, d.Cache, d.Scheduler, d.Logger,
	)

	g.GET("/chat/ws", socketCtl.Handle())

	authed := g.Group("", auth.Middleware(d.Verifier))
	authed.POST("/conversations", createCtl.Handle())
	authed.GET("/conversations", listCtl.Handle())
	authed.GET("/conversations/recent", listCtl.HandleRecent())
	authed.GET("/conversations/:conversationId/messages", messagesCtl.Handle())
	authed.POST("/conversations/:conversationId/participants", participantCtl.HandleAdd())
	authed.DELETE("/conversations/:conversationId/participants/:userId", participantCtl.HandleRemove())
	authed.PUT("/conversations/:conversationId/pin", settingsCtl.HandlePin())
	authed.PUT("/conversations/:conversationId/mute", settingsCtl.HandleMute())
}
