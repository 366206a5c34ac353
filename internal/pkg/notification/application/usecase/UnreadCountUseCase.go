package usecase

import (
	"context"
	"fmt"
	"strconv"

	cport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/pkg/notification/application/badge"
	notification "go-courier/internal/pkg/notification/application/domain"
	repository "go-courier/internal/pkg/notification/persistence/repository/port"
)

// UnreadCountUseCase serves the badge counter, cache first. On a miss the
// count is read from the store and the cache is repopulated.
type UnreadCountUseCase struct {
	Repo  repository.NotificationRepository
	Cache cport.Cache
}

func NewUnreadCountUseCase(repo repository.NotificationRepository, cache cport.Cache) *UnreadCountUseCase {
	return &UnreadCountUseCase{Repo: repo, Cache: cache}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, userID string) (int64, error) {
	key := notification.BadgeCacheKey(userID)
	if cached, err := uc.Cache.Get(ctx, key); err == nil {
		if count, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
			return count, nil
		}
	}

	count, err := uc.Repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	// repopulate best-effort, a miss next time just recounts
	_ = uc.Cache.Set(ctx, key, strconv.FormatInt(count, 10), badge.CacheTTL)
	return count, nil
}
