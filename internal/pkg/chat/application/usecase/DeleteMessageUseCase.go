package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// DeleteMessageInput identifies the author's message to soft-delete.
type DeleteMessageInput struct {
	MessageID      string
	ConversationID string
	SenderID       string
}

// DeleteMessageUseCase flags a message deleted. The record stays in place so
// the conversation's message count and references remain valid.
type DeleteMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewDeleteMessageUseCase(repo repository.ChatRepository) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{Repo: repo}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, in DeleteMessageInput) error {
	if in.MessageID == "" || in.ConversationID == "" || in.SenderID == "" {
		return chat.ErrInvalidMessage
	}

	err := uc.Repo.SoftDeleteMessage(ctx, in.MessageID, in.ConversationID, in.SenderID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) || errors.Is(err, chat.ErrNotSender) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
