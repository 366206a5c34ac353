package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	cport "go-courier/internal/infrastructure/cache/port"
	"go-courier/internal/infrastructure/realtime"
	"go-courier/internal/pkg/notification/application/badge"
	notification "go-courier/internal/pkg/notification/application/domain"
	repository "go-courier/internal/pkg/notification/persistence/repository/port"
)

// MarkNotificationReadUseCase flips one notification to read and refreshes
// the badge. Only the owning user can mark their notifications.
type MarkNotificationReadUseCase struct {
	Repo     repository.NotificationRepository
	Cache    cport.Cache
	Registry realtime.SessionRegistry
	Logger   *slog.Logger
}

func NewMarkNotificationReadUseCase(
	repo repository.NotificationRepository,
	cache cport.Cache,
	registry realtime.SessionRegistry,
	logger *slog.Logger,
) *MarkNotificationReadUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkNotificationReadUseCase{Repo: repo, Cache: cache, Registry: registry, Logger: logger}
}

func (uc *MarkNotificationReadUseCase) Execute(ctx context.Context, notificationID, userID string) error {
	if err := uc.Repo.MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	badge.Refresh(ctx, uc.Repo, uc.Cache, uc.Registry, uc.Logger, userID)
	return nil
}
