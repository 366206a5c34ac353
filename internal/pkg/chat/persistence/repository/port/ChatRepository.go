package repository

import (
	"context"
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for conversations and
// messages. All writes are single-document and retry-safe; no cross-document
// transaction is assumed anywhere in the contract.
type ChatRepository interface {
	CreateConversation(ctx context.Context, c chat.Conversation) (string, error)
	GetConversation(ctx context.Context, id string) (*chat.Conversation, error)
	// FindDM returns the existing DM between two users, or nil when none
	// exists. Used for first-contact dedupe.
	FindDM(ctx context.Context, userA, userB string) (*chat.Conversation, error)
	ListConversations(ctx context.Context, userID string, page, limit int) ([]chat.Conversation, error)
	ListConversationIDs(ctx context.Context, userID string) ([]string, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)

	AddParticipant(ctx context.Context, conversationID string, p chat.Participant) error
	RemoveParticipant(ctx context.Context, conversationID, userID string) error
	// AdvanceParticipantLastSeen moves the participant's lastSeenAt forward.
	AdvanceParticipantLastSeen(ctx context.Context, conversationID, userID string, at time.Time) error

	InsertMessage(ctx context.Context, m chat.Message) (string, error)
	GetMessage(ctx context.Context, id string) (*chat.Message, error)
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error)
	// BumpActivity sets lastMessageId, stamps lastActivity, and increments
	// totalMessages by exactly one. Independent of the message insert.
	BumpActivity(ctx context.Context, conversationID, lastMessageID string, at time.Time) error

	// AppendEdit pushes the previous content onto the edit history and swaps
	// in the new content, only when senderID authored the message.
	AppendEdit(ctx context.Context, messageID, conversationID, senderID, content string, at time.Time) error
	// SoftDeleteMessage flags the message deleted, only for its author.
	SoftDeleteMessage(ctx context.Context, messageID, conversationID, senderID string, at time.Time) error
	// AppendReadReceipt adds {userID, readAt} to the message's readBy unless
	// the user already appears there. Returns whether an entry was added, so
	// repeated calls are observably idempotent.
	AppendReadReceipt(ctx context.Context, messageID, userID string, at time.Time) (bool, error)
}
