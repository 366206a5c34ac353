package chat

import (
	"strings"
	"time"
)

// MessageStatus advances monotonically forward only: sent -> delivered -> read.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// Attachment is a stored file reference carried by a message.
type Attachment struct {
	URL      string `bson:"url"`
	MimeType string `bson:"mimeType,omitempty"`
	Size     int64  `bson:"size,omitempty"`
}

// ReadReceipt records one user's read of a message. At most one entry per
// user exists in a message's ReadBy array.
type ReadReceipt struct {
	UserID string    `bson:"userId"`
	ReadAt time.Time `bson:"readAt"`
}

// Edit is one entry in the append-only edit history.
type Edit struct {
	Content  string    `bson:"content"`
	EditedAt time.Time `bson:"editedAt"`
}

// Message is a log entry in a conversation. Content is immutable once read
// state advances past a user, except through the append-only edit history.
type Message struct {
	ID             string        `bson:"_id,omitempty"`
	ConversationID string        `bson:"conversationId"`
	SenderID       string        `bson:"senderId"`
	Content        string        `bson:"content,omitempty"`
	Attachments    []Attachment  `bson:"attachments,omitempty"`
	ReadBy         []ReadReceipt `bson:"readBy,omitempty"`
	Status         MessageStatus `bson:"status"`
	EditHistory    []Edit        `bson:"editHistory,omitempty"`
	Deleted        bool          `bson:"deleted"`
	DeletedAt      *time.Time    `bson:"deletedAt,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt"`
}

// NewMessage validates and normalizes a message for persistence. A message
// must carry content or at least one attachment, never neither.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.SenderID == "" {
		return nil, ErrInvalidMessage
	}

	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" && len(m.Attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Status == "" {
		m.Status = StatusSent
	}
	return &m, nil
}

// HasRead reports whether userID already appears in the readBy array.
func (m *Message) HasRead(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
