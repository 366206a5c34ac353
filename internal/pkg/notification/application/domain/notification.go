package notification

import (
	"errors"
	"time"
)

// ErrNotFound reports a missing notification record.
var ErrNotFound = errors.New("notification: not found")

// Channel is a delivery mechanism. ChannelAll means mobile push and live
// socket are both attempted independently.
type Channel string

const (
	ChannelFCM    Channel = "fcm"
	ChannelSocket Channel = "socket"
	ChannelInApp  Channel = "in-app"
	ChannelAll    Channel = "all"
)

// Status is the read lifecycle of a persisted notification. Records are never
// physically deleted; markAsRead ends the lifecycle.
type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// Notification is the persisted record of one logical event for one
// recipient. Exactly one exists per (event, recipient); the stamped channel is
// the one resolved at delivery time.
type Notification struct {
	ID        string            `bson:"_id,omitempty"`
	UserID    string            `bson:"userId"`
	Type      string            `bson:"type"`
	Content   string            `bson:"content"`
	Channel   Channel           `bson:"channel"`
	Status    Status            `bson:"status"`
	Metadata  map[string]string `bson:"metadata,omitempty"`
	CreatedAt time.Time         `bson:"createdAt"`
}

// BadgeCacheKey is the cache key holding a user's unread badge counter.
func BadgeCacheKey(userID string) string {
	return "badge:" + userID
}

// Job is the durable at-least-once unit of work consumed by the delivery
// worker. It is not a user-visible entity.
type Job struct {
	UserID      string            `json:"userId"`
	Type        string            `json:"type"`
	Content     string            `json:"content"`
	ChannelHint Channel           `json:"channelHint"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
