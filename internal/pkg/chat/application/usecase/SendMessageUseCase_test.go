package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	chat "go-courier/internal/pkg/chat/application/domain"
)

func groupConversation(id string, memberIDs ...string) chat.Conversation {
	now := time.Now().UTC()
	participants := make([]chat.Participant, 0, len(memberIDs))
	for i, m := range memberIDs {
		role := chat.RoleMember
		if i == 0 {
			role = chat.RoleOwner
		}
		participants = append(participants, chat.Participant{UserID: m, Role: role, JoinedAt: now})
	}
	return chat.Conversation{
		ID:           id,
		Kind:         chat.KindGroupDM,
		Name:         "room",
		CreatedBy:    memberIDs[0],
		Participants: participants,
		CreatedAt:    now,
	}
}

func TestSendMessagePersistsAndFansOut(t *testing.T) {
	repo := newFakeChatRepo()
	users := newFakeUserRepo()
	repo.addConversation(groupConversation("c1", "alice", "bob", "carol"))

	uc := NewSendMessageUseCase(repo, users)
	res, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1",
		SenderID:       "alice",
		Content:        "  hello  ",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Message.ID == "" {
		t.Fatal("message id not assigned")
	}
	if res.Message.Content != "hello" {
		t.Fatalf("content not trimmed: %q", res.Message.Content)
	}
	if res.Message.Status != chat.StatusSent {
		t.Fatalf("status = %q, want sent", res.Message.Status)
	}
	if res.Conversation.Metadata.TotalMessages != 1 {
		t.Fatalf("totalMessages = %d, want 1", res.Conversation.Metadata.TotalMessages)
	}
	if res.Conversation.LastMessageID != res.Message.ID {
		t.Fatal("lastMessageId not advanced")
	}

	if len(users.fanouts) != 1 {
		t.Fatalf("fanouts = %d, want 1", len(users.fanouts))
	}
	fo := users.fanouts[0]
	if fo.SenderID != "alice" || fo.MessageID != res.Message.ID {
		t.Fatalf("unexpected fanout: %+v", fo)
	}
	if len(fo.RecipientIDs) != 2 {
		t.Fatalf("recipients = %v, want bob and carol", fo.RecipientIDs)
	}
	for _, r := range fo.RecipientIDs {
		if r == "alice" {
			t.Fatal("sender must not be a fanout recipient")
		}
	}
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	repo := newFakeChatRepo()
	users := newFakeUserRepo()
	repo.addConversation(groupConversation("c1", "alice", "bob"))

	uc := NewSendMessageUseCase(repo, users)
	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1",
		SenderID:       "mallory",
		Content:        "hi",
	})
	if !errors.Is(err, chat.ErrNotParticipant) {
		t.Fatalf("err = %v, want ErrNotParticipant", err)
	}
	if len(repo.insertedMessages) != 0 {
		t.Fatal("nothing must be persisted for a rejected sender")
	}
	if len(users.fanouts) != 0 {
		t.Fatal("no fanout for a rejected sender")
	}
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	repo := newFakeChatRepo()
	users := newFakeUserRepo()
	repo.addConversation(groupConversation("c1", "alice", "bob"))

	uc := NewSendMessageUseCase(repo, users)
	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1",
		SenderID:       "alice",
		Content:        "   ",
	})
	if !errors.Is(err, chat.ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestSendMessageAttachmentOnly(t *testing.T) {
	repo := newFakeChatRepo()
	users := newFakeUserRepo()
	repo.addConversation(groupConversation("c1", "alice", "bob"))

	uc := NewSendMessageUseCase(repo, users)
	res, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1",
		SenderID:       "alice",
		Attachments:    []chat.Attachment{{URL: "https://files/x.png", MimeType: "image/png"}},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Message.Attachments) != 1 {
		t.Fatal("attachment lost")
	}
}

func TestSendMessageWrapsPersistenceError(t *testing.T) {
	repo := newFakeChatRepo()
	users := newFakeUserRepo()
	repo.addConversation(groupConversation("c1", "alice", "bob"))
	repo.errInsertMessage = errors.New("socket timeout")

	uc := NewSendMessageUseCase(repo, users)
	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1",
		SenderID:       "alice",
		Content:        "hi",
	})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
}
