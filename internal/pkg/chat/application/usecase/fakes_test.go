package usecase

import (
	"context"
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
	user "go-courier/internal/pkg/user/application/domain"
	userrepo "go-courier/internal/pkg/user/persistence/repository/port"
)

// fakeChatRepo is an in-memory ChatRepository for use case tests. Behavior is
// steered through the err* fields; state through the maps.
type fakeChatRepo struct {
	conversations map[string]*chat.Conversation
	messages      map[string]*chat.Message

	insertedMessages []chat.Message
	bumpedActivity   []string
	appendedReceipts []string
	advancedLastSeen []string

	errGetConversation error
	errInsertMessage   error
	errAppendReceipt   error
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		conversations: make(map[string]*chat.Conversation),
		messages:      make(map[string]*chat.Message),
	}
}

func (f *fakeChatRepo) addConversation(c chat.Conversation) {
	cp := c
	f.conversations[c.ID] = &cp
}

func (f *fakeChatRepo) CreateConversation(ctx context.Context, c chat.Conversation) (string, error) {
	if c.ID == "" {
		c.ID = "conv-" + time.Now().Format("150405.000000000")
	}
	f.addConversation(c)
	return c.ID, nil
}

func (f *fakeChatRepo) GetConversation(ctx context.Context, id string) (*chat.Conversation, error) {
	if f.errGetConversation != nil {
		return nil, f.errGetConversation
	}
	c, ok := f.conversations[id]
	if !ok {
		return nil, chat.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChatRepo) FindDM(ctx context.Context, userA, userB string) (*chat.Conversation, error) {
	for _, c := range f.conversations {
		if c.Kind == chat.KindDM && c.HasParticipant(userA) && c.HasParticipant(userB) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeChatRepo) ListConversations(ctx context.Context, userID string, page, limit int) ([]chat.Conversation, error) {
	var out []chat.Conversation
	for _, c := range f.conversations {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) ListConversationIDs(ctx context.Context, userID string) ([]string, error) {
	var out []string
	for _, c := range f.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c.ID)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	c, ok := f.conversations[conversationID]
	if !ok {
		return false, nil
	}
	return c.HasParticipant(userID), nil
}

func (f *fakeChatRepo) AddParticipant(ctx context.Context, conversationID string, p chat.Participant) error {
	c, ok := f.conversations[conversationID]
	if !ok {
		return chat.ErrNotFound
	}
	if !c.HasParticipant(p.UserID) {
		c.Participants = append(c.Participants, p)
	}
	return nil
}

func (f *fakeChatRepo) RemoveParticipant(ctx context.Context, conversationID, userID string) error {
	c, ok := f.conversations[conversationID]
	if !ok {
		return chat.ErrNotFound
	}
	kept := c.Participants[:0]
	for _, p := range c.Participants {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	c.Participants = kept
	return nil
}

func (f *fakeChatRepo) AdvanceParticipantLastSeen(ctx context.Context, conversationID, userID string, at time.Time) error {
	f.advancedLastSeen = append(f.advancedLastSeen, conversationID+"/"+userID)
	return nil
}

func (f *fakeChatRepo) InsertMessage(ctx context.Context, m chat.Message) (string, error) {
	if f.errInsertMessage != nil {
		return "", f.errInsertMessage
	}
	if m.ID == "" {
		m.ID = "msg-" + time.Now().Format("150405.000000000")
	}
	cp := m
	f.messages[m.ID] = &cp
	f.insertedMessages = append(f.insertedMessages, m)
	return m.ID, nil
}

func (f *fakeChatRepo) GetMessage(ctx context.Context, id string) (*chat.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, chat.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	var out []chat.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) BumpActivity(ctx context.Context, conversationID, lastMessageID string, at time.Time) error {
	f.bumpedActivity = append(f.bumpedActivity, conversationID)
	if c, ok := f.conversations[conversationID]; ok {
		c.LastMessageID = lastMessageID
		c.Metadata.TotalMessages++
		c.Metadata.LastActivity = at
	}
	return nil
}

func (f *fakeChatRepo) AppendEdit(ctx context.Context, messageID, conversationID, senderID, content string, at time.Time) error {
	m, ok := f.messages[messageID]
	if !ok || m.ConversationID != conversationID {
		return chat.ErrNotFound
	}
	if m.SenderID != senderID {
		return chat.ErrNotSender
	}
	m.EditHistory = append(m.EditHistory, chat.Edit{Content: m.Content, EditedAt: at})
	m.Content = content
	return nil
}

func (f *fakeChatRepo) SoftDeleteMessage(ctx context.Context, messageID, conversationID, senderID string, at time.Time) error {
	m, ok := f.messages[messageID]
	if !ok || m.ConversationID != conversationID {
		return chat.ErrNotFound
	}
	if m.SenderID != senderID {
		return chat.ErrNotSender
	}
	m.Deleted = true
	m.DeletedAt = &at
	return nil
}

func (f *fakeChatRepo) AppendReadReceipt(ctx context.Context, messageID, userID string, at time.Time) (bool, error) {
	if f.errAppendReceipt != nil {
		return false, f.errAppendReceipt
	}
	m, ok := f.messages[messageID]
	if !ok {
		return false, chat.ErrNotFound
	}
	if m.HasRead(userID) {
		return false, nil
	}
	m.ReadBy = append(m.ReadBy, chat.ReadReceipt{UserID: userID, ReadAt: at})
	f.appendedReceipts = append(f.appendedReceipts, messageID+"/"+userID)
	return true, nil
}

// fakeUserRepo records projection mutations.
type fakeUserRepo struct {
	users map[string]*user.User

	fanouts      []userrepo.FanoutInput
	unreadResets []string
	presence     map[string]user.PresenceStatus

	errFanout error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[string]*user.User),
		presence: make(map[string]user.PresenceStatus),
	}
}

func (f *fakeUserRepo) Get(ctx context.Context, userID string) (*user.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetMany(ctx context.Context, userIDs []string) ([]user.User, error) {
	var out []user.User
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SetPresence(ctx context.Context, userID string, status user.PresenceStatus, lastSeen time.Time) error {
	f.presence[userID] = status
	return nil
}

func (f *fakeUserRepo) SetPushToken(ctx context.Context, userID, token string) error {
	return nil
}

func (f *fakeUserRepo) ApplyMessageFanout(ctx context.Context, in userrepo.FanoutInput) error {
	if f.errFanout != nil {
		return f.errFanout
	}
	f.fanouts = append(f.fanouts, in)
	return nil
}

func (f *fakeUserRepo) ResetUnread(ctx context.Context, userID, conversationID, lastReadMessageID string, at time.Time) error {
	f.unreadResets = append(f.unreadResets, userID+"/"+conversationID)
	return nil
}

func (f *fakeUserRepo) RecentConversations(ctx context.Context, userID string, page, limit int) ([]user.RecentConversation, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	return u.RecentConversations, nil
}

func (f *fakeUserRepo) SetPinned(ctx context.Context, userID, conversationID string, pinned bool) error {
	return nil
}

func (f *fakeUserRepo) SetMuted(ctx context.Context, userID, conversationID string, muted bool, until *time.Time) error {
	return nil
}
