package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go-courier/internal/infrastructure/auth"
	"go-courier/internal/pkg/chat/application/usecase"
	chatrepo "go-courier/internal/pkg/chat/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// GetMessagesController handles fetching a conversation's messages (one
// controller per endpoint).
type GetMessagesController struct {
	UC *usecase.GetMessagesUseCase
}

func NewGetMessagesController(repo chatrepo.ChatRepository) *GetMessagesController {
	return &GetMessagesController{UC: usecase.NewGetMessagesUseCase(repo)}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		limit := 50
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetMessagesInput{
			ConversationID: conversationID,
			UserID:         auth.UserID(c),
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			c.JSON(httpStatus(err), errorBody(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": toMessageDTOs(msgs),
			"limit":    limit,
			"offset":   offset,
			"count":    len(msgs),
		})
	}
}
