package usecase

import (
	"context"
	"fmt"

	notification "go-courier/internal/pkg/notification/application/domain"
	repository "go-courier/internal/pkg/notification/persistence/repository/port"
)

// ListNotificationsUseCase pages through a user's notification history,
// newest first.
type ListNotificationsUseCase struct {
	Repo repository.NotificationRepository
}

func NewListNotificationsUseCase(repo repository.NotificationRepository) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{Repo: repo}
}

func (uc *ListNotificationsUseCase) Execute(ctx context.Context, userID string, page, limit int) ([]notification.Notification, error) {
	items, err := uc.Repo.List(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return items, nil
}
