package http

import (
	"log/slog"

	"go-courier/internal/infrastructure/auth"
	cport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/infrastructure/realtime"
	"go-courier/internal/pkg/notification/presentation/controller"
	repository "go-courier/internal/pkg/notification/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the notification endpoints under the given router
// group.
func RegisterRoutes(
	g *gin.RouterGroup,
	repo repository.NotificationRepository,
	cache cport.Cache,
	registry realtime.SessionRegistry,
	verifier *auth.Verifier,
	logger *slog.Logger,
) {
	ctl := controller.NewNotificationController(repo, cache, registry, logger)

	authed := g.Group("", auth.Middleware(verifier))
	authed.GET("/notifications", ctl.HandleList())
	authed.GET("/notifications/unread-count", ctl.HandleUnreadCount())
	authed.POST("/notifications/:notificationId/read", ctl.HandleMarkRead())
	authed.POST("/notifications/read-all", ctl.HandleMarkAllRead())
}
