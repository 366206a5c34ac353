package usecase

import (
	"context"
	"fmt"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// GetConversationsInput pages through a user's conversations by activity.
type GetConversationsInput struct {
	UserID string
	Page   int
	Limit  int
}

// GetConversationsUseCase returns a paginated snapshot of the user's
// conversations, most recently active first.
type GetConversationsUseCase struct {
	Repo repository.ChatRepository
}

func NewGetConversationsUseCase(repo repository.ChatRepository) *GetConversationsUseCase {
	return &GetConversationsUseCase{Repo: repo}
}

func (uc *GetConversationsUseCase) Execute(ctx context.Context, in GetConversationsInput) ([]chat.Conversation, error) {
	if in.UserID == "" {
		return nil, chat.ErrInvalidConversation
	}
	convs, err := uc.Repo.ListConversations(ctx, in.UserID, in.Page, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return convs, nil
}
