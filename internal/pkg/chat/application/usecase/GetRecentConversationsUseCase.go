package usecase

import (
	"context"
	"fmt"

	chat "go-courier/internal/pkg/chat/application/domain"
	user "go-courier/internal/pkg/user/application/domain"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"
)

// GetRecentConversationsInput pages through the user's recent-list projection.
type GetRecentConversationsInput struct {
	UserID string
	Page   int
	Limit  int
}

// GetRecentConversationsUseCase returns the denormalized recent-conversations
// snapshot: pinned first, then by last activity, with unread counters.
type GetRecentConversationsUseCase struct {
	Users userrepo.UserRepository
}

func NewGetRecentConversationsUseCase(users userrepo.UserRepository) *GetRecentConversationsUseCase {
	return &GetRecentConversationsUseCase{Users: users}
}

func (uc *GetRecentConversationsUseCase) Execute(ctx context.Context, in GetRecentConversationsInput) ([]user.RecentConversation, error) {
	if in.UserID == "" {
		return nil, chat.ErrInvalidConversation
	}
	entries, err := uc.Users.RecentConversations(ctx, in.UserID, in.Page, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return entries, nil
}
