package http

import (
	"go-courier/internal/infrastructure/auth"
	cport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/pkg/user/presentation/controller"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the user endpoints under the given router group.
func RegisterRoutes(g *gin.RouterGroup, users userrepo.UserRepository, cache cport.Cache, verifier *auth.Verifier) {
	ctl := controller.NewUserController(users, cache)

	authed := g.Group("", auth.Middleware(verifier))
	authed.PUT("/users/me/push-token", ctl.HandlePushToken())
	authed.GET("/users/:userId/presence", ctl.HandlePresence())
}
