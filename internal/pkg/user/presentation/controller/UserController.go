package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-courier/internal/infrastructure/auth"
	cport "go-courier/internal/infrastructure/cache/port"
	user "go-courier/internal/pkg/user/application/domain"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// UserController handles the device token registration and presence lookup
// endpoints.
type UserController struct {
	Users userrepo.UserRepository
	Cache cport.Cache
}

func NewUserController(users userrepo.UserRepository, cache cport.Cache) *UserController {
	return &UserController{Users: users, Cache: cache}
}

type pushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// HandlePushToken stores the caller's device push token. One token per user;
// a new registration replaces the previous one.
func (h *UserController) HandlePushToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pushTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.Users.SetPushToken(ctx, auth.UserID(c), req.Token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary storage failure"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"registered": true})
	}
}

// HandlePresence reports another user's presence. The heartbeat cache answers
// first; on a miss the projection document is the fallback, so a crashed
// gateway node cannot leave a user permanently "online".
func (h *UserController) HandlePresence() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if status, err := h.Cache.Get(ctx, user.PresenceCacheKey(userID)); err == nil {
			c.JSON(http.StatusOK, gin.H{"userId": userID, "status": status})
			return
		}

		u, err := h.Users.Get(ctx, userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary storage failure"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"userId":     u.ID,
			"status":     u.PresenceStatus,
			"lastSeenAt": u.LastSeenAt,
		})
	}
}
