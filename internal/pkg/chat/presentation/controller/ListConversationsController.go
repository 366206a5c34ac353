package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go-courier/internal/infrastructure/auth"
	"go-courier/internal/pkg/chat/application/usecase"
	chatrepo "go-courier/internal/pkg/chat/persistence/repository/port"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// ListConversationsController serves the caller's conversations and the
// denormalized recent list.
type ListConversationsController struct {
	ListUC   *usecase.GetConversationsUseCase
	RecentUC *usecase.GetRecentConversationsUseCase
}

func NewListConversationsController(repo chatrepo.ChatRepository, users userrepo.UserRepository) *ListConversationsController {
	return &ListConversationsController{
		ListUC:   usecase.NewGetConversationsUseCase(repo),
		RecentUC: usecase.NewGetRecentConversationsUseCase(users),
	}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pageParams(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		convs, err := h.ListUC.Execute(ctx, usecase.GetConversationsInput{
			UserID: auth.UserID(c),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			c.JSON(httpStatus(err), errorBody(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"conversations": toConversationDTOs(convs),
			"page":          page,
			"limit":         limit,
			"count":         len(convs),
		})
	}
}

// HandleRecent serves the unread-annotated recent list, pinned first.
func (h *ListConversationsController) HandleRecent() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pageParams(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		entries, err := h.RecentUC.Execute(ctx, usecase.GetRecentConversationsInput{
			UserID: auth.UserID(c),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			c.JSON(httpStatus(err), errorBody(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"conversations": toRecentDTOs(entries),
			"page":          page,
			"limit":         limit,
			"count":         len(entries),
		})
	}
}

func pageParams(c *gin.Context) (page, limit int) {
	page = 0
	limit = 20
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return page, limit
}
