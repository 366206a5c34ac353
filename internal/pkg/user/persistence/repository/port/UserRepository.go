package repository

import (
	"context"
	"time"

	user "go-courier/internal/pkg/user/application/domain"
)

// FanoutInput describes one message's effect on the recent-list projections of
// a conversation's participants.
type FanoutInput struct {
	ConversationID string
	SenderID       string
	MessageID      string
	// RecipientIDs are every participant except the sender.
	RecipientIDs []string
	At           time.Time
}

// UserRepository defines persistence operations on the user projection. The
// recent-list mutations are batched: fan-out to a large room is a bounded
// number of multi-document writes, never a per-user loop.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*user.User, error)
	// GetMany loads projections for a set of users in one query.
	GetMany(ctx context.Context, userIDs []string) ([]user.User, error)

	// SetPresence writes presenceStatus and lastSeenAt. Idempotent: repeating
	// a write with the same status is harmless.
	SetPresence(ctx context.Context, userID string, status user.PresenceStatus, lastSeen time.Time) error
	SetPushToken(ctx context.Context, userID, token string) error

	// ApplyMessageFanout performs the unread fan-out as one batched write:
	// increment unreadCount for recipients whose projection already holds the
	// conversation, insert the projection entry for those missing it, and
	// reset the sender's entry to zero with lastReadMessageId advanced.
	ApplyMessageFanout(ctx context.Context, in FanoutInput) error

	// ResetUnread zeroes unreadCount and advances lastReadMessageId for one
	// (user, conversation) pair, inserting the entry when absent.
	ResetUnread(ctx context.Context, userID, conversationID, lastReadMessageID string, at time.Time) error

	RecentConversations(ctx context.Context, userID string, page, limit int) ([]user.RecentConversation, error)
	SetPinned(ctx context.Context, userID, conversationID string, pinned bool) error
	SetMuted(ctx context.Context, userID, conversationID string, muted bool, until *time.Time) error
}
