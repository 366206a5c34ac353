package usecase

import (
	"context"
	"errors"
	"testing"

	chat "go-courier/internal/pkg/chat/application/domain"
)

func TestEditMessageKeepsHistory(t *testing.T) {
	repo := newFakeChatRepo()
	users := newFakeUserRepo()
	repo.addConversation(groupConversation("c1", "alice", "bob"))

	sent, _ := NewSendMessageUseCase(repo, users).Execute(context.Background(), SendMessageInput{
		ConversationID: "c1", SenderID: "alice", Content: "helo",
	})

	uc := NewEditMessageUseCase(repo)
	err := uc.Execute(context.Background(), EditMessageInput{
		MessageID:      sent.Message.ID,
		ConversationID: "c1",
		SenderID:       "alice",
		Content:        "hello",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	msg, _ := repo.GetMessage(context.Background(), sent.Message.ID)
	if msg.Content != "hello" {
		t.Fatalf("content = %q", msg.Content)
	}
	if len(msg.EditHistory) != 1 || msg.EditHistory[0].Content != "helo" {
		t.Fatalf("edit history = %+v", msg.EditHistory)
	}
}

func TestEditMessageOnlyAuthor(t *testing.T) {
	repo := newFakeChatRepo()
	users := newFakeUserRepo()
	repo.addConversation(groupConversation("c1", "alice", "bob"))

	sent, _ := NewSendMessageUseCase(repo, users).Execute(context.Background(), SendMessageInput{
		ConversationID: "c1", SenderID: "alice", Content: "hi",
	})

	uc := NewEditMessageUseCase(repo)
	err := uc.Execute(context.Background(), EditMessageInput{
		MessageID:      sent.Message.ID,
		ConversationID: "c1",
		SenderID:       "bob",
		Content:        "hijacked",
	})
	if !errors.Is(err, chat.ErrNotSender) {
		t.Fatalf("err = %v, want ErrNotSender", err)
	}
}

func TestDeleteMessageIsSoft(t *testing.T) {
	repo := newFakeChatRepo()
	users := newFakeUserRepo()
	repo.addConversation(groupConversation("c1", "alice", "bob"))

	sent, _ := NewSendMessageUseCase(repo, users).Execute(context.Background(), SendMessageInput{
		ConversationID: "c1", SenderID: "alice", Content: "oops",
	})

	uc := NewDeleteMessageUseCase(repo)
	err := uc.Execute(context.Background(), DeleteMessageInput{
		MessageID:      sent.Message.ID,
		ConversationID: "c1",
		SenderID:       "alice",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	msg, err := repo.GetMessage(context.Background(), sent.Message.ID)
	if err != nil {
		t.Fatal("record must survive a soft delete")
	}
	if !msg.Deleted || msg.DeletedAt == nil {
		t.Fatalf("message not flagged deleted: %+v", msg)
	}
}

func TestDeleteMessageOnlyAuthor(t *testing.T) {
	repo := newFakeChatRepo()
	users := newFakeUserRepo()
	repo.addConversation(groupConversation("c1", "alice", "bob"))

	sent, _ := NewSendMessageUseCase(repo, users).Execute(context.Background(), SendMessageInput{
		ConversationID: "c1", SenderID: "alice", Content: "hi",
	})

	uc := NewDeleteMessageUseCase(repo)
	err := uc.Execute(context.Background(), DeleteMessageInput{
		MessageID:      sent.Message.ID,
		ConversationID: "c1",
		SenderID:       "bob",
	})
	if !errors.Is(err, chat.ErrNotSender) {
		t.Fatalf("err = %v, want ErrNotSender", err)
	}
}
