package usecase

import (
	"context"
	"fmt"
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"
)

// MuteConversationInput toggles notification muting on a user's recent-list
// entry. Until is optional; nil mutes indefinitely.
type MuteConversationInput struct {
	UserID         string
	ConversationID string
	Muted          bool
	Until          *time.Time
}

// MuteConversationUseCase mutates only the caller's own projection. Muting
// suppresses notifications but never unread counting.
type MuteConversationUseCase struct {
	Users userrepo.UserRepository
}

func NewMuteConversationUseCase(users userrepo.UserRepository) *MuteConversationUseCase {
	return &MuteConversationUseCase{Users: users}
}

func (uc *MuteConversationUseCase) Execute(ctx context.Context, in MuteConversationInput) error {
	if in.UserID == "" || in.ConversationID == "" {
		return chat.ErrInvalidConversation
	}
	if err := uc.Users.SetMuted(ctx, in.UserID, in.ConversationID, in.Muted, in.Until); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
