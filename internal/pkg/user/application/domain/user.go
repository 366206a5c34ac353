package user

import (
	"errors"
	"time"
)

// ErrNotFound reports a missing user projection document.
var ErrNotFound = errors.New("user: not found")

// PresenceStatus is a user's connectivity state: online iff at least one live
// connection exists.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
)

// PresenceCacheKey is the TTL'd heartbeat key a gateway node refreshes while
// it holds a live session for the user. Any node may consult it.
func PresenceCacheKey(userID string) string {
	return "presence:" + userID
}

// RecentConversation is one entry of the per-user recent-list projection,
// kept eventually consistent with the canonical conversation and message
// records by the consistency layer.
type RecentConversation struct {
	ConversationID    string     `bson:"conversationId"`
	UnreadCount       int64      `bson:"unreadCount"`
	LastReadMessageID string     `bson:"lastReadMessageId,omitempty"`
	IsPinned          bool       `bson:"isPinned"`
	IsMuted           bool       `bson:"isMuted"`
	MutedUntil        *time.Time `bson:"mutedUntil,omitempty"`
	LastActivity      time.Time  `bson:"lastActivity"`
}

// User is the minimal projection this system owns: identity, presence, the
// optional device push token, and the recent-conversations array.
type User struct {
	ID                  string               `bson:"_id,omitempty"`
	Name                string               `bson:"name,omitempty"`
	PresenceStatus      PresenceStatus       `bson:"presenceStatus"`
	LastSeenAt          time.Time            `bson:"lastSeenAt"`
	PushToken           string               `bson:"pushToken,omitempty"`
	RecentConversations []RecentConversation `bson:"recentConversations,omitempty"`
}

// Recent returns the projection entry for conversationID, if present.
func (u *User) Recent(conversationID string) (*RecentConversation, bool) {
	for i := range u.RecentConversations {
		if u.RecentConversations[i].ConversationID == conversationID {
			return &u.RecentConversations[i], true
		}
	}
	return nil, false
}

// NotificationsMuted reports whether message notifications for the
// conversation are currently suppressed. Unread counting is unaffected.
func (r *RecentConversation) NotificationsMuted(now time.Time) bool {
	if !r.IsMuted {
		return false
	}
	if r.MutedUntil != nil && now.After(*r.MutedUntil) {
		return false
	}
	return true
}
