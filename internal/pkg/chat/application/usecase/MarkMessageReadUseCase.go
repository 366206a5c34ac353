package usecase

import (
	"context"
	"fmt"
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"
)

// MarkMessageReadInput identifies the message a user has read up to.
type MarkMessageReadInput struct {
	ConversationID string
	UserID         string
	MessageID      string
}

// MarkMessageReadResult reports whether a new receipt was recorded and the
// lastSeen timestamp to broadcast.
type MarkMessageReadResult struct {
	Added    bool
	LastSeen time.Time
}

// MarkMessageReadUseCase appends the read receipt (idempotently), advances
// the participant's lastSeenAt, and zeroes the reader's unread counter.
type MarkMessageReadUseCase struct {
	Repo  repository.ChatRepository
	Users userrepo.UserRepository
}

func NewMarkMessageReadUseCase(repo repository.ChatRepository, users userrepo.UserRepository) *MarkMessageReadUseCase {
	return &MarkMessageReadUseCase{Repo: repo, Users: users}
}

func (uc *MarkMessageReadUseCase) Execute(ctx context.Context, in MarkMessageReadInput) (*MarkMessageReadResult, error) {
	if in.ConversationID == "" || in.UserID == "" || in.MessageID == "" {
		return nil, chat.ErrInvalidMessage
	}

	ok, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return nil, chat.ErrNotParticipant
	}

	now := time.Now().UTC()

	added, err := uc.Repo.AppendReadReceipt(ctx, in.MessageID, in.UserID, now)
	if err != nil {
		if err == chat.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uc.Repo.AdvanceParticipantLastSeen(ctx, in.ConversationID, in.UserID, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uc.Users.ResetUnread(ctx, in.UserID, in.ConversationID, in.MessageID, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &MarkMessageReadResult{Added: added, LastSeen: now}, nil
}
