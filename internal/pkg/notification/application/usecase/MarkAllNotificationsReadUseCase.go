package usecase

import (
	"context"
	"fmt"
	"log/slog"

	cport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/infrastructure/realtime"
	"go-courier/internal/pkg/notification/application/badge"
	repository "go-courier/internal/pkg/notification/persistence/repository/port"
)

// MarkAllNotificationsReadUseCase flips every unread notification of a user
// to read and refreshes the badge.
type MarkAllNotificationsReadUseCase struct {
	Repo     repository.NotificationRepository
	Cache    cport.Cache
	Registry realtime.SessionRegistry
	Logger   *slog.Logger
}

func NewMarkAllNotificationsReadUseCase(
	repo repository.NotificationRepository,
	cache cport.Cache,
	registry realtime.SessionRegistry,
	logger *slog.Logger,
) *MarkAllNotificationsReadUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkAllNotificationsReadUseCase{Repo: repo, Cache: cache, Registry: registry, Logger: logger}
}

func (uc *MarkAllNotificationsReadUseCase) Execute(ctx context.Context, userID string) error {
	if err := uc.Repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	badge.Refresh(ctx, uc.Repo, uc.Cache, uc.Registry, uc.Logger, userID)
	return nil
}
