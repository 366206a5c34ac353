package controller

import (
	"context"
	"net/http"
	"time"

	"go-courier/internal/infrastructure/auth"
	"go-courier/internal/infrastructure/realtime"
	chat "go-courier/internal/pkg/chat/application/domain"
	"go-courier/internal/pkg/chat/application/usecase"
	chatrepo "go-courier/internal/pkg/chat/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// CreateConversationController handles conversation creation (one controller
// per endpoint).
type CreateConversationController struct {
	UC       *usecase.CreateConversationUseCase
	Registry realtime.SessionRegistry
}

func NewCreateConversationController(repo chatrepo.ChatRepository, registry realtime.SessionRegistry) *CreateConversationController {
	return &CreateConversationController{
		UC:       usecase.NewCreateConversationUseCase(repo),
		Registry: registry,
	}
}

type createConversationRequest struct {
	Kind           string   `json:"kind" binding:"required"`
	Name           string   `json:"name"`
	ParticipantIDs []string `json:"participantIds"`
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.CreateConversationInput{
			CreatorID:      auth.UserID(c),
			Kind:           chat.ConversationKind(req.Kind),
			Name:           req.Name,
			ParticipantIDs: req.ParticipantIDs,
		})
		if err != nil {
			c.JSON(httpStatus(err), errorBody(err))
			return
		}

		// live sessions of every member start receiving room traffic now
		for _, p := range conv.Participants {
			h.Registry.SubscribeUser(p.UserID, conv.ID)
		}

		c.JSON(http.StatusCreated, toConversationDTO(*conv))
	}
}
