package chat

import (
	"time"
)

// ConversationKind tags the conversation variant. Every fan-out decision
// switches exhaustively over this type.
type ConversationKind string

const (
	KindDM      ConversationKind = "DM"
	KindGroupDM ConversationKind = "GroupDM"
	KindChatbot ConversationKind = "CHATBOT"
)

// BotUserID is the sender persona for responder-authored messages in CHATBOT
// conversations.
const BotUserID = "chatbot"

// ParticipantRole expresses the role within a conversation.
type ParticipantRole string

const (
	RoleOwner  ParticipantRole = "owner"
	RoleAdmin  ParticipantRole = "admin"
	RoleMember ParticipantRole = "member"
)

// Participant captures membership and per-conversation read state.
// Unique per user within a conversation.
type Participant struct {
	UserID     string          `bson:"userId"`
	Role       ParticipantRole `bson:"role"`
	JoinedAt   time.Time       `bson:"joinedAt"`
	LastSeenAt time.Time       `bson:"lastSeenAt"`
}

// ConversationMetadata holds the denormalized summary fields updated on every
// message.
type ConversationMetadata struct {
	TotalMessages int64     `bson:"totalMessages"`
	LastActivity  time.Time `bson:"lastActivity"`
}

// Conversation is the canonical conversation record. It is archived, never
// hard-deleted, while messages still reference it.
type Conversation struct {
	ID            string               `bson:"_id,omitempty"`
	Kind          ConversationKind     `bson:"kind"`
	Name          string               `bson:"name,omitempty"`
	CreatedBy     string               `bson:"createdBy"`
	Participants  []Participant        `bson:"participants"`
	LastMessageID string               `bson:"lastMessageId,omitempty"`
	Metadata      ConversationMetadata `bson:"metadata"`
	Archived      bool                 `bson:"archived"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

// NewConversation validates and normalizes a conversation for creation.
func NewConversation(c Conversation) (*Conversation, error) {
	switch c.Kind {
	case KindDM:
		if len(c.Participants) != 2 {
			return nil, ErrInvalidConversation
		}
	case KindGroupDM:
		if len(c.Participants) < 2 {
			return nil, ErrInvalidConversation
		}
		owners := 0
		for _, p := range c.Participants {
			if p.Role == RoleOwner {
				owners++
			}
		}
		if owners != 1 {
			return nil, ErrInvalidConversation
		}
	case KindChatbot:
		if len(c.Participants) != 1 {
			return nil, ErrInvalidConversation
		}
	default:
		return nil, ErrInvalidConversation
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	for i := range c.Participants {
		if c.Participants[i].Role == "" {
			c.Participants[i].Role = RoleMember
		}
		if c.Participants[i].JoinedAt.IsZero() {
			c.Participants[i].JoinedAt = now
		}
	}
	if c.Metadata.LastActivity.IsZero() {
		c.Metadata.LastActivity = now
	}
	return &c, nil
}

// Participant returns the membership entry for userID, if any.
func (c *Conversation) Participant(userID string) (*Participant, bool) {
	for i := range c.Participants {
		if c.Participants[i].UserID == userID {
			return &c.Participants[i], true
		}
	}
	return nil, false
}

// HasParticipant tells whether userID is an active member of the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	_, ok := c.Participant(userID)
	return ok
}

// OtherParticipantIDs returns every participant id except userID.
func (c *Conversation) OtherParticipantIDs(userID string) []string {
	out := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.UserID != userID {
			out = append(out, p.UserID)
		}
	}
	return out
}

// CanRemove enforces the owner invariant: the owner of a group cannot leave or
// be removed while other participants remain.
func (c *Conversation) CanRemove(userID string) error {
	p, ok := c.Participant(userID)
	if !ok {
		return ErrNotParticipant
	}
	if c.Kind == KindGroupDM && p.Role == RoleOwner && len(c.Participants) > 1 {
		return ErrLastOwner
	}
	return nil
}

// RequiresBotResponse reports whether the fan-out path must invoke the
// external responder after persisting a user message. The switch is
// exhaustive over ConversationKind.
func (c *Conversation) RequiresBotResponse() bool {
	switch c.Kind {
	case KindChatbot:
		return true
	case KindDM, KindGroupDM:
		return false
	default:
		return false
	}
}
