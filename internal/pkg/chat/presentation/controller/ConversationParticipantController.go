package controller

import (
	"context"
	"net/http"
	"time"

	"go-courier/internal/infrastructure/auth"
	"go-courier/internal/infrastructure/realtime"
	"go-courier/internal/pkg/chat/application/usecase"
	chatrepo "go-courier/internal/pkg/chat/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// ConversationParticipantController handles membership changes on group
// conversations. Room subscriptions in the registry follow the persisted
// membership: subscribe after a successful add, unsubscribe after a remove.
type ConversationParticipantController struct {
	AddUC    *usecase.AddParticipantUseCase
	RemoveUC *usecase.RemoveParticipantUseCase
	Registry realtime.SessionRegistry
}

func NewConversationParticipantController(repo chatrepo.ChatRepository, registry realtime.SessionRegistry) *ConversationParticipantController {
	return &ConversationParticipantController{
		AddUC:    usecase.NewAddParticipantUseCase(repo),
		RemoveUC: usecase.NewRemoveParticipantUseCase(repo),
		Registry: registry,
	}
}

type addParticipantRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *ConversationParticipantController) HandleAdd() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		var req addParticipantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.AddUC.Execute(ctx, usecase.AddParticipantInput{
			ConversationID: conversationID,
			ActorID:        auth.UserID(c),
			UserID:         req.UserID,
		})
		if err != nil {
			c.JSON(httpStatus(err), errorBody(err))
			return
		}

		h.Registry.SubscribeUser(req.UserID, conv.ID)
		if payload, encErr := realtime.Encode(realtime.EventParticipantAdded, gin.H{
			"conversationId": conv.ID,
			"userId":         req.UserID,
			"addedBy":        auth.UserID(c),
		}); encErr == nil {
			h.Registry.Broadcast(conv.ID, payload, "")
		}

		c.JSON(http.StatusOK, toConversationDTO(*conv))
	}
}

func (h *ConversationParticipantController) HandleRemove() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		userID := c.Param("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.RemoveUC.Execute(ctx, usecase.RemoveParticipantInput{
			ConversationID: conversationID,
			ActorID:        auth.UserID(c),
			UserID:         userID,
		})
		if err != nil {
			c.JSON(httpStatus(err), errorBody(err))
			return
		}

		h.Registry.UnsubscribeUser(userID, conv.ID)
		if payload, encErr := realtime.Encode(realtime.EventParticipantRemoved, gin.H{
			"conversationId": conv.ID,
			"userId":         userID,
			"removedBy":      auth.UserID(c),
		}); encErr == nil {
			h.Registry.Broadcast(conv.ID, payload, "")
		}

		c.JSON(http.StatusOK, toConversationDTO(*conv))
	}
}
