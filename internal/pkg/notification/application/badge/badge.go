package badge

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	cport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/infrastructure/realtime"
	notification "go-courier/internal/pkg/notification/application/domain"
	repository "go-courier/internal/pkg/notification/persistence/repository/port"
)

// CacheTTL bounds how long a cached badge counter survives without a recount.
const CacheTTL = 24 * time.Hour

// Refresh recounts unread notifications, rewrites the cached badge and pushes
// the fresh count to the user's live sessions. Failures are logged, never
// propagated: the store already holds the truth and the next refresh
// converges.
func Refresh(
	ctx context.Context,
	repo repository.NotificationRepository,
	cache cport.Cache,
	registry realtime.SessionRegistry,
	logger *slog.Logger,
	userID string,
) {
	count, err := repo.CountUnread(ctx, userID)
	if err != nil {
		logger.Warn("unread recount failed", "userId", userID, "err", err)
		return
	}
	if err := cache.Set(ctx, notification.BadgeCacheKey(userID), strconv.FormatInt(count, 10), CacheTTL); err != nil {
		logger.Warn("badge cache write failed", "userId", userID, "err", err)
	}
	if payload, err := realtime.Encode(realtime.EventNotificationCount, map[string]int64{"count": count}); err == nil {
		registry.NotifyUser(userID, payload)
	}
}
