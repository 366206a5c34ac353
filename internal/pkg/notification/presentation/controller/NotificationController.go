package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go-courier/internal/infrastructure/auth"
	cport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/infrastructure/realtime"
	notification "go-courier/internal/pkg/notification/application/domain"
	"go-courier/internal/pkg/notification/application/usecase"
	repository "go-courier/internal/pkg/notification/persistence/repository/port"

	"github.com/gin-gonic/gin"
)

// NotificationController serves the in-app notification feed: history, the
// unread badge, and the read transitions.
type NotificationController struct {
	ListUC    *usecase.ListNotificationsUseCase
	CountUC   *usecase.UnreadCountUseCase
	MarkUC    *usecase.MarkNotificationReadUseCase
	MarkAllUC *usecase.MarkAllNotificationsReadUseCase
}

func NewNotificationController(
	repo repository.NotificationRepository,
	cache cport.Cache,
	registry realtime.SessionRegistry,
	logger *slog.Logger,
) *NotificationController {
	return &NotificationController{
		ListUC:    usecase.NewListNotificationsUseCase(repo),
		CountUC:   usecase.NewUnreadCountUseCase(repo, cache),
		MarkUC:    usecase.NewMarkNotificationReadUseCase(repo, cache, registry, logger),
		MarkAllUC: usecase.NewMarkAllNotificationsReadUseCase(repo, cache, registry, logger),
	}
}

type notificationDTO struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Content   string            `json:"content"`
	Channel   string            `json:"channel"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (h *NotificationController) HandleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 0
		limit := 20
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

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		items, err := h.ListUC.Execute(ctx, auth.UserID(c), page, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary storage failure"})
			return
		}

		out := make([]notificationDTO, 0, len(items))
		for _, n := range items {
			out = append(out, notificationDTO{
				ID:        n.ID,
				Type:      n.Type,
				Content:   n.Content,
				Channel:   string(n.Channel),
				Status:    string(n.Status),
				Metadata:  n.Metadata,
				CreatedAt: n.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"notifications": out,
			"page":          page,
			"limit":         limit,
			"count":         len(out),
		})
	}
}

func (h *NotificationController) HandleUnreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		count, err := h.CountUC.Execute(ctx, auth.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary storage failure"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

func (h *NotificationController) HandleMarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("notificationId")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "notificationId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.MarkUC.Execute(ctx, id, auth.UserID(c)); err != nil {
			if errors.Is(err, notification.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary storage failure"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"read": true})
	}
}

func (h *NotificationController) HandleMarkAllRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.MarkAllUC.Execute(ctx, auth.UserID(c)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary storage failure"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"read": true})
	}
}
