package usecase

import (
	"context"
	"errors"
	"testing"

	chat "go-courier/internal/pkg/chat/application/domain"
)

func TestCreateDMDeduplicates(t *testing.T) {
	repo := newFakeChatRepo()
	uc := NewCreateConversationUseCase(repo)

	first, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		Kind:           chat.KindDM,
		ParticipantIDs: []string{"bob"},
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	second, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "bob",
		Kind:           chat.KindDM,
		ParticipantIDs: []string{"alice"},
	})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("DM not deduplicated: %q vs %q", first.ID, second.ID)
	}
	if len(repo.conversations) != 1 {
		t.Fatalf("conversations = %d, want 1", len(repo.conversations))
	}
}

func TestCreateGroupAssignsCreatorAsOwner(t *testing.T) {
	repo := newFakeChatRepo()
	uc := NewCreateConversationUseCase(repo)

	conv, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		Kind:           chat.KindGroupDM,
		Name:           "plans",
		ParticipantIDs: []string{"bob", "carol"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	p, ok := conv.Participant("alice")
	if !ok || p.Role != chat.RoleOwner {
		t.Fatalf("creator role = %+v, want owner", p)
	}
	if len(conv.Participants) != 3 {
		t.Fatalf("participants = %d, want 3", len(conv.Participants))
	}
}

func TestCreateChatbotConversation(t *testing.T) {
	repo := newFakeChatRepo()
	uc := NewCreateConversationUseCase(repo)

	conv, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID: "alice",
		Kind:      chat.KindChatbot,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !conv.RequiresBotResponse() {
		t.Fatal("chatbot conversation must require bot responses")
	}
}

func TestRemoveParticipantOwnerInvariant(t *testing.T) {
	repo := newFakeChatRepo()
	repo.addConversation(groupConversation("g1", "alice", "bob", "carol"))

	uc := NewRemoveParticipantUseCase(repo)
	_, err := uc.Execute(context.Background(), RemoveParticipantInput{
		ConversationID: "g1",
		ActorID:        "alice",
		UserID:         "alice",
	})
	if !errors.Is(err, chat.ErrLastOwner) {
		t.Fatalf("err = %v, want ErrLastOwner", err)
	}

	conv, _ := repo.GetConversation(context.Background(), "g1")
	if len(conv.Participants) != 3 {
		t.Fatal("participant list must be unchanged after a rejected removal")
	}
}

func TestRemoveParticipantSelfLeave(t *testing.T) {
	repo := newFakeChatRepo()
	repo.addConversation(groupConversation("g1", "alice", "bob", "carol"))

	uc := NewRemoveParticipantUseCase(repo)
	conv, err := uc.Execute(context.Background(), RemoveParticipantInput{
		ConversationID: "g1",
		ActorID:        "bob",
		UserID:         "bob",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if conv.HasParticipant("bob") {
		t.Fatal("bob must be gone from the returned conversation")
	}
}

func TestAddParticipantRequiresPrivilege(t *testing.T) {
	repo := newFakeChatRepo()
	repo.addConversation(groupConversation("g1", "alice", "bob"))

	uc := NewAddParticipantUseCase(repo)
	_, err := uc.Execute(context.Background(), AddParticipantInput{
		ConversationID: "g1",
		ActorID:        "bob", // member, not owner or admin
		UserID:         "carol",
	})
	if !errors.Is(err, chat.ErrNotParticipant) {
		t.Fatalf("err = %v, want ErrNotParticipant", err)
	}
}
