package usecase

import (
	"context"
	"fmt"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// GetMessagesInput pages through one conversation's messages, newest first.
type GetMessagesInput struct {
	ConversationID string
	UserID         string
	Limit          int
	Offset         int
}

// GetMessagesUseCase fetches messages for a participant.
type GetMessagesUseCase struct {
	Repo repository.ChatRepository
}

func NewGetMessagesUseCase(repo repository.ChatRepository) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) ([]chat.Message, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return nil, chat.ErrInvalidMessage
	}

	ok, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return nil, chat.ErrNotParticipant
	}

	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
