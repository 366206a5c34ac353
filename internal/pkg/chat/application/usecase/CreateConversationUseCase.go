package usecase

import (
	"context"
	"fmt"
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// CreateConversationInput carries the data to open a new conversation.
// For a DM, ParticipantIDs holds the single peer; for a group, all invitees.
type CreateConversationInput struct {
	CreatorID      string
	Kind           chat.ConversationKind
	Name           string
	ParticipantIDs []string
}

// CreateConversationUseCase creates a conversation of the requested kind.
// DMs are deduplicated on first contact: an existing DM between the two users
// is returned instead of creating a second one.
type CreateConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewCreateConversationUseCase(repo repository.ChatRepository) *CreateConversationUseCase {
	return &CreateConversationUseCase{Repo: repo}
}

func (uc *CreateConversationUseCase) Execute(ctx context.Context, in CreateConversationInput) (*chat.Conversation, error) {
	if in.CreatorID == "" {
		return nil, chat.ErrInvalidConversation
	}

	now := time.Now().UTC()
	participants := []chat.Participant{}

	switch in.Kind {
	case chat.KindDM:
		if len(in.ParticipantIDs) != 1 || in.ParticipantIDs[0] == in.CreatorID {
			return nil, chat.ErrInvalidConversation
		}
		existing, err := uc.Repo.FindDM(ctx, in.CreatorID, in.ParticipantIDs[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if existing != nil {
			return existing, nil
		}
		participants = append(participants,
			chat.Participant{UserID: in.CreatorID, Role: chat.RoleMember, JoinedAt: now},
			chat.Participant{UserID: in.ParticipantIDs[0], Role: chat.RoleMember, JoinedAt: now},
		)
	case chat.KindGroupDM:
		participants = append(participants, chat.Participant{UserID: in.CreatorID, Role: chat.RoleOwner, JoinedAt: now})
		for _, id := range in.ParticipantIDs {
			if id == "" || id == in.CreatorID {
				continue
			}
			participants = append(participants, chat.Participant{UserID: id, Role: chat.RoleMember, JoinedAt: now})
		}
	case chat.KindChatbot:
		participants = append(participants, chat.Participant{UserID: in.CreatorID, Role: chat.RoleMember, JoinedAt: now})
	default:
		return nil, chat.ErrInvalidConversation
	}

	conv, err := chat.NewConversation(chat.Conversation{
		Kind:         in.Kind,
		Name:         in.Name,
		CreatedBy:    in.CreatorID,
		Participants: participants,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.CreateConversation(ctx, *conv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	conv.ID = id
	return conv, nil
}
