package chat

import (
	"errors"
	"testing"
	"time"
)

func TestNewMessageDefaults(t *testing.T) {
	msg, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "alice",
		Content:        "  hi there  ",
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if msg.Content != "hi there" {
		t.Fatalf("content = %q, want trimmed", msg.Content)
	}
	if msg.Status != StatusSent {
		t.Fatalf("status = %q, want sent", msg.Status)
	}
	if msg.CreatedAt.IsZero() {
		t.Fatal("createdAt must be stamped")
	}
}

func TestNewMessageRejectsEmpty(t *testing.T) {
	_, err := NewMessage(Message{ConversationID: "c1", SenderID: "alice", Content: "   "})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestNewMessageAcceptsAttachmentOnly(t *testing.T) {
	msg, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "alice",
		Attachments:    []Attachment{{URL: "https://files/a.pdf"}},
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if msg.Content != "" {
		t.Fatalf("content = %q, want empty", msg.Content)
	}
}

func TestNewMessageRequiresIdentity(t *testing.T) {
	if _, err := NewMessage(Message{SenderID: "alice", Content: "hi"}); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("missing conversation: err = %v", err)
	}
	if _, err := NewMessage(Message{ConversationID: "c1", Content: "hi"}); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("missing sender: err = %v", err)
	}
}

func TestHasRead(t *testing.T) {
	msg := Message{ReadBy: []ReadReceipt{{UserID: "bob", ReadAt: time.Now()}}}
	if !msg.HasRead("bob") {
		t.Fatal("bob has read")
	}
	if msg.HasRead("alice") {
		t.Fatal("alice has not read")
	}
}
