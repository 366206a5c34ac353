package usecase

import (
	"context"
	"fmt"

	chat "go-courier/internal/pkg/chat/application/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"
)

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
	Attachments    []chat.Attachment
}

// SendMessageResult is the populated message plus the conversation it landed
// in; the caller needs the conversation for the fan-out decision.
type SendMessageResult struct {
	Message      *chat.Message
	Conversation *chat.Conversation
}

// SendMessageUseCase persists a message, updates the conversation summary,
// and applies the unread fan-out to every other participant's recent list.
// The three writes are independent and individually retry-safe; the broadcast
// to live connections happens at the edge only after this returns.
type SendMessageUseCase struct {
	Repo  repository.ChatRepository
	Users userrepo.UserRepository
}

func NewSendMessageUseCase(repo repository.ChatRepository, users userrepo.UserRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Users: users}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*SendMessageResult, error) {
	if in.ConversationID == "" || in.SenderID == "" {
		return nil, chat.ErrInvalidMessage
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if err == chat.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(in.SenderID) {
		return nil, chat.ErrNotParticipant
	}

	msg, err := chat.NewMessage(chat.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		Attachments:    in.Attachments,
	})
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.InsertMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	if err := uc.Repo.BumpActivity(ctx, conv.ID, msg.ID, msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	conv.LastMessageID = msg.ID
	conv.Metadata.TotalMessages++
	conv.Metadata.LastActivity = msg.CreatedAt

	if err := uc.Users.ApplyMessageFanout(ctx, userrepo.FanoutInput{
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		MessageID:      msg.ID,
		RecipientIDs:   conv.OtherParticipantIDs(in.SenderID),
		At:             msg.CreatedAt,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &SendMessageResult{Message: msg, Conversation: conv}, nil
}
