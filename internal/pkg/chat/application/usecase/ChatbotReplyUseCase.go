package usecase

import (
	"context"
	"fmt"
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
	chatbot "go-courier/internal/pkg/chatbot/port"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"
)

// apologyText is the persisted fallback when the responder fails. The chat
// history must never silently lose a failure.
const apologyText = "Sorry, I couldn't come up with an answer right now. Please try again in a moment."

// ChatbotReplyUseCase invokes the external responder for a CHATBOT
// conversation and persists the bot-authored reply. On responder failure it
// persists an apology message instead and still returns ErrExternalService so
// the caller can report the failure after the apology is visible.
type ChatbotReplyUseCase struct {
	Repo      repository.ChatRepository
	Users     userrepo.UserRepository
	Responder chatbot.Responder
}

func NewChatbotReplyUseCase(repo repository.ChatRepository, users userrepo.UserRepository, responder chatbot.Responder) *ChatbotReplyUseCase {
	return &ChatbotReplyUseCase{Repo: repo, Users: users, Responder: responder}
}

// Execute returns the persisted bot message in both the success and the
// apology case; err is non-nil only in the apology case.
func (uc *ChatbotReplyUseCase) Execute(ctx context.Context, conv *chat.Conversation, question string) (*chat.Message, error) {
	answer, askErr := uc.Responder.Ask(ctx, question)

	content := apologyText
	if askErr == nil {
		content = answer.Answer
	}

	msg, err := chat.NewMessage(chat.Message{
		ConversationID: conv.ID,
		SenderID:       chat.BotUserID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	id, err := uc.Repo.InsertMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	if err := uc.Repo.BumpActivity(ctx, conv.ID, msg.ID, msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uc.Users.ApplyMessageFanout(ctx, userrepo.FanoutInput{
		ConversationID: conv.ID,
		SenderID:       chat.BotUserID,
		MessageID:      msg.ID,
		RecipientIDs:   conv.OtherParticipantIDs(chat.BotUserID),
		At:             msg.CreatedAt,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if askErr != nil {
		return msg, fmt.Errorf("%w: %v", chat.ErrExternalService, askErr)
	}
	return msg, nil
}
