package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// RemoveParticipantInput removes UserID from a conversation. ActorID equals
// UserID when a member leaves voluntarily.
type RemoveParticipantInput struct {
	ConversationID string
	ActorID        string
	UserID         string
}

// RemoveParticipantUseCase revokes membership. The owner invariant holds: a
// group owner cannot leave or be removed while other participants remain, so
// the operation fails with the participant list unchanged.
type RemoveParticipantUseCase struct {
	Repo repository.ChatRepository
}

func NewRemoveParticipantUseCase(repo repository.ChatRepository) *RemoveParticipantUseCase {
	return &RemoveParticipantUseCase{Repo: repo}
}

func (uc *RemoveParticipantUseCase) Execute(ctx context.Context, in RemoveParticipantInput) (*chat.Conversation, error) {
	if in.ConversationID == "" || in.ActorID == "" || in.UserID == "" {
		return nil, chat.ErrInvalidConversation
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if in.ActorID != in.UserID {
		actor, ok := conv.Participant(in.ActorID)
		if !ok || (actor.Role != chat.RoleOwner && actor.Role != chat.RoleAdmin) {
			return nil, chat.ErrNotParticipant
		}
	}

	if err := conv.CanRemove(in.UserID); err != nil {
		return nil, err
	}

	if err := uc.Repo.RemoveParticipant(ctx, conv.ID, in.UserID); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	kept := conv.Participants[:0]
	for _, p := range conv.Participants {
		if p.UserID != in.UserID {
			kept = append(kept, p)
		}
	}
	conv.Participants = kept
	return conv, nil
}
