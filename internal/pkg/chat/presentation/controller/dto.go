package controller

import (
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
	user "go-courier/internal/pkg/user/application/domain"
)

// Wire DTOs. Domain structs carry storage tags only, so the presentation
// layer owns the JSON shape.

type attachmentDTO struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

type readReceiptDTO struct {
	UserID string    `json:"userId"`
	ReadAt time.Time `json:"readAt"`
}

type messageDTO struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversationId"`
	SenderID       string           `json:"senderId"`
	Content        string           `json:"content,omitempty"`
	Attachments    []attachmentDTO  `json:"attachments,omitempty"`
	ReadBy         []readReceiptDTO `json:"readBy,omitempty"`
	Status         string           `json:"status"`
	Deleted        bool             `json:"deleted,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

type participantDTO struct {
	UserID     string    `json:"userId"`
	Role       string    `json:"role"`
	JoinedAt   time.Time `json:"joinedAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

type conversationDTO struct {
	ID            string           `json:"id"`
	Kind          string           `json:"kind"`
	Name          string           `json:"name,omitempty"`
	CreatedBy     string           `json:"createdBy"`
	Participants  []participantDTO `json:"participants"`
	LastMessageID string           `json:"lastMessageId,omitempty"`
	TotalMessages int64            `json:"totalMessages"`
	LastActivity  time.Time        `json:"lastActivity"`
	CreatedAt     time.Time        `json:"createdAt"`
}

type recentConversationDTO struct {
	ConversationID    string     `json:"conversationId"`
	UnreadCount       int64      `json:"unreadCount"`
	LastReadMessageID string     `json:"lastReadMessageId,omitempty"`
	IsPinned          bool       `json:"isPinned"`
	IsMuted           bool       `json:"isMuted"`
	MutedUntil        *time.Time `json:"mutedUntil,omitempty"`
	LastActivity      time.Time  `json:"lastActivity"`
}

func toMessageDTO(m chat.Message) messageDTO {
	out := messageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		Status:         string(m.Status),
		Deleted:        m.Deleted,
		CreatedAt:      m.CreatedAt,
	}
	for _, a := range m.Attachments {
		out.Attachments = append(out.Attachments, attachmentDTO{URL: a.URL, MimeType: a.MimeType, Size: a.Size})
	}
	for _, r := range m.ReadBy {
		out.ReadBy = append(out.ReadBy, readReceiptDTO{UserID: r.UserID, ReadAt: r.ReadAt})
	}
	return out
}

func toMessageDTOs(msgs []chat.Message) []messageDTO {
	out := make([]messageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageDTO(m))
	}
	return out
}

func toConversationDTO(c chat.Conversation) conversationDTO {
	out := conversationDTO{
		ID:            c.ID,
		Kind:          string(c.Kind),
		Name:          c.Name,
		CreatedBy:     c.CreatedBy,
		LastMessageID: c.LastMessageID,
		TotalMessages: c.Metadata.TotalMessages,
		LastActivity:  c.Metadata.LastActivity,
		CreatedAt:     c.CreatedAt,
	}
	for _, p := range c.Participants {
		out.Participants = append(out.Participants, participantDTO{
			UserID:     p.UserID,
			Role:       string(p.Role),
			JoinedAt:   p.JoinedAt,
			LastSeenAt: p.LastSeenAt,
		})
	}
	return out
}

func toConversationDTOs(convs []chat.Conversation) []conversationDTO {
	out := make([]conversationDTO, 0, len(convs))
	for _, c := range convs {
		out = append(out, toConversationDTO(c))
	}
	return out
}

func toRecentDTOs(entries []user.RecentConversation) []recentConversationDTO {
	out := make([]recentConversationDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, recentConversationDTO{
			ConversationID:    e.ConversationID,
			UnreadCount:       e.UnreadCount,
			LastReadMessageID: e.LastReadMessageID,
			IsPinned:          e.IsPinned,
			IsMuted:           e.IsMuted,
			MutedUntil:        e.MutedUntil,
			LastActivity:      e.LastActivity,
		})
	}
	return out
}
