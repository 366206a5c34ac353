package usecase

import (
	"context"
	"fmt"

	chat "go-courier/internal/pkg/chat/application/domain"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"
)

// PinConversationInput toggles the pin flag on a user's recent-list entry.
type PinConversationInput struct {
	UserID         string
	ConversationID string
	Pinned         bool
}

// PinConversationUseCase mutates only the caller's own projection.
type PinConversationUseCase struct {
	Users userrepo.UserRepository
}

func NewPinConversationUseCase(users userrepo.UserRepository) *PinConversationUseCase {
	return &PinConversationUseCase{Users: users}
}

func (uc *PinConversationUseCase) Execute(ctx context.Context, in PinConversationInput) error {
	if in.UserID == "" || in.ConversationID == "" {
		return chat.ErrInvalidConversation
	}
	if err := uc.Users.SetPinned(ctx, in.UserID, in.ConversationID, in.Pinned); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
