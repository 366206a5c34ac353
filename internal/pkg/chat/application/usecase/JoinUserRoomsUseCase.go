package usecase

import (
	"context"
	"fmt"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// JoinUserRoomsUseCase resolves the set of room ids (conversation ids) a
// freshly connected user must be subscribed to. The gateway performs the
// actual subscriptions against the registry.
type JoinUserRoomsUseCase struct {
	Repo repository.ChatRepository
}

func NewJoinUserRoomsUseCase(repo repository.ChatRepository) *JoinUserRoomsUseCase {
	return &JoinUserRoomsUseCase{Repo: repo}
}

func (uc *JoinUserRoomsUseCase) Execute(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, chat.ErrInvalidConversation
	}
	ids, err := uc.Repo.ListConversationIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ids, nil
}
