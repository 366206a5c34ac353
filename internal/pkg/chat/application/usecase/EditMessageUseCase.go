package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// EditMessageInput carries an author's revision of their own message.
type EditMessageInput struct {
	MessageID      string
	ConversationID string
	SenderID       string
	Content        string
}

// EditMessageUseCase swaps in new content and appends it to the message's
// append-only edit history. Only the author may edit.
type EditMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewEditMessageUseCase(repo repository.ChatRepository) *EditMessageUseCase {
	return &EditMessageUseCase{Repo: repo}
}

func (uc *EditMessageUseCase) Execute(ctx context.Context, in EditMessageInput) error {
	if in.MessageID == "" || in.ConversationID == "" || in.SenderID == "" {
		return chat.ErrInvalidMessage
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return chat.ErrEmptyMessage
	}

	err := uc.Repo.AppendEdit(ctx, in.MessageID, in.ConversationID, in.SenderID, content, time.Now().UTC())
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) || errors.Is(err, chat.ErrNotSender) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
