package controller

import (
	"context"
	"net/http"
	"time"

	"go-courier/internal/infrastructure/auth"
	"go-courier/internal/pkg/chat/application/usecase"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// ConversationSettingsController handles the caller's per-conversation
// preferences: pinning and notification muting. Both touch only the caller's
// own recent-list projection.
type ConversationSettingsController struct {
	PinUC  *usecase.PinConversationUseCase
	MuteUC *usecase.MuteConversationUseCase
}

func NewConversationSettingsController(users userrepo.UserRepository) *ConversationSettingsController {
	return &ConversationSettingsController{
		PinUC:  usecase.NewPinConversationUseCase(users),
		MuteUC: usecase.NewMuteConversationUseCase(users),
	}
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

type muteRequest struct {
	Muted bool       `json:"muted"`
	Until *time.Time `json:"until,omitempty"`
}

func (h *ConversationSettingsController) HandlePin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err := h.PinUC.Execute(ctx, usecase.PinConversationInput{
			UserID:         auth.UserID(c),
			ConversationID: c.Param("conversationId"),
			Pinned:         req.Pinned,
		})
		if err != nil {
			c.JSON(httpStatus(err), errorBody(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"pinned": req.Pinned})
	}
}

func (h *ConversationSettingsController) HandleMute() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req muteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err := h.MuteUC.Execute(ctx, usecase.MuteConversationInput{
			UserID:         auth.UserID(c),
			ConversationID: c.Param("conversationId"),
			Muted:          req.Muted,
			Until:          req.Until,
		})
		if err != nil {
			c.JSON(httpStatus(err), errorBody(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"muted": req.Muted, "until": req.Until})
	}
}
