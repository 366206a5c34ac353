package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// AddParticipantInput adds UserID to a group conversation on behalf of ActorID.
type AddParticipantInput struct {
	ConversationID string
	ActorID        string
	UserID         string
}

// AddParticipantUseCase persists the membership grant. The caller subscribes
// the new member's live connections only after this returns, so a connection
// is never subscribed to a room its user is not yet a member of.
type AddParticipantUseCase struct {
	Repo repository.ChatRepository
}

func NewAddParticipantUseCase(repo repository.ChatRepository) *AddParticipantUseCase {
	return &AddParticipantUseCase{Repo: repo}
}

func (uc *AddParticipantUseCase) Execute(ctx context.Context, in AddParticipantInput) (*chat.Conversation, error) {
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
	if conv.Kind != chat.KindGroupDM {
		return nil, chat.ErrInvalidConversation
	}

	actor, ok := conv.Participant(in.ActorID)
	if !ok {
		return nil, chat.ErrNotParticipant
	}
	if actor.Role != chat.RoleOwner && actor.Role != chat.RoleAdmin {
		return nil, chat.ErrNotParticipant
	}

	p := chat.Participant{UserID: in.UserID, Role: chat.RoleMember, JoinedAt: time.Now().UTC()}
	if err := uc.Repo.AddParticipant(ctx, conv.ID, p); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if !conv.HasParticipant(in.UserID) {
		conv.Participants = append(conv.Participants, p)
	}
	return conv, nil
}
