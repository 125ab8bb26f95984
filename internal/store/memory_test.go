package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"support-chat-backend/internal/model"
)

func frozen() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestMemoryCreatedIsStrictlyIncreasing(t *testing.T) {
	repo := NewMemoryRepository(frozen)
	ctx := context.Background()

	chat, err := repo.CreateChat(ctx, model.ChatItem{Author: "Alice", AssignedStaff: model.AuthorAI})
	if err != nil {
		t.Fatalf("CreateChat error: %v", err)
	}

	var last string
	for i := 0; i < 5; i++ {
		msg, err := repo.CreateMessage(ctx, model.MessageItem{ChatParentID: chat.ID, Author: "Alice", Message: "hi"})
		if err != nil {
			t.Fatalf("CreateMessage error: %v", err)
		}
		if msg.Created <= last {
			t.Fatalf("created did not increase: %s after %s", msg.Created, last)
		}
		last = msg.Created
	}

	messages, err := repo.ListMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("ListMessages error: %v", err)
	}
	if len(messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i-1].Created >= messages[i].Created {
			t.Fatalf("messages out of order at %d", i)
		}
	}
}

func TestMemoryListChatsFilterAndOrder(t *testing.T) {
	repo := NewMemoryRepository(nil)
	ctx := context.Background()

	first, _ := repo.CreateChat(ctx, model.ChatItem{Author: "A"})
	second, _ := repo.CreateChat(ctx, model.ChatItem{Author: "B"})
	third, _ := repo.CreateChat(ctx, model.ChatItem{Author: "C"})

	if _, err := repo.MarkNeedsHuman(ctx, first.ID); err != nil {
		t.Fatalf("MarkNeedsHuman error: %v", err)
	}
	if _, err := repo.MarkNeedsHuman(ctx, third.ID); err != nil {
		t.Fatalf("MarkNeedsHuman error: %v", err)
	}

	all, err := repo.ListChats(ctx, ChatFilter{})
	if err != nil {
		t.Fatalf("ListChats error: %v", err)
	}
	if len(all) != 3 || all[0].ID != third.ID || all[2].ID != first.ID {
		t.Fatalf("unexpected order %+v", all)
	}

	needsHuman := true
	escalated, err := repo.ListChats(ctx, ChatFilter{NeedsHuman: &needsHuman})
	if err != nil {
		t.Fatalf("ListChats error: %v", err)
	}
	if len(escalated) != 2 || escalated[0].ID != third.ID || escalated[1].ID != first.ID {
		t.Fatalf("unexpected escalated list %+v", escalated)
	}
	for _, c := range escalated {
		if c.ID == second.ID {
			t.Fatal("non-escalated chat listed")
		}
	}
}

func TestMemoryAssignStaffOnlyIfUnclaimed(t *testing.T) {
	repo := NewMemoryRepository(nil)
	ctx := context.Background()

	chat, _ := repo.CreateChat(ctx, model.ChatItem{AssignedStaff: model.AuthorAI})

	if _, err := repo.AssignStaff(ctx, chat.ID, "Bob", true); err != nil {
		t.Fatalf("first claim error: %v", err)
	}
	if _, err := repo.AssignStaff(ctx, chat.ID, "Bob", true); err != nil {
		t.Fatalf("same staff re-claim error: %v", err)
	}
	if _, err := repo.AssignStaff(ctx, chat.ID, "Carol", true); !errors.Is(err, ErrConditionFailed) {
		t.Fatalf("expected ErrConditionFailed, got %v", err)
	}

	updated, err := repo.AssignStaff(ctx, chat.ID, "Carol", false)
	if err != nil {
		t.Fatalf("unconditional assign error: %v", err)
	}
	if updated.AssignedStaff != "Carol" {
		t.Fatalf("expected Carol, got %s", updated.AssignedStaff)
	}

	if _, err := repo.AssignStaff(ctx, "missing", "Bob", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryMarkReadAndLookups(t *testing.T) {
	repo := NewMemoryRepository(nil)
	ctx := context.Background()

	if _, err := repo.MarkMessageRead(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	msg, _ := repo.CreateMessage(ctx, model.MessageItem{ChatParentID: "c1", Author: "ai", Message: "hello", Sent: true})
	read, err := repo.MarkMessageRead(ctx, msg.ID)
	if err != nil {
		t.Fatalf("MarkMessageRead error: %v", err)
	}
	if !read.Read || read.Message != "hello" {
		t.Fatalf("unexpected message %+v", read)
	}

	repo.SeedStaffUser(model.StaffUserItem{Email: "Bob@Example.com", Name: "Bob"})
	user, err := repo.GetStaffUserByEmail(ctx, " bob@example.com ")
	if err != nil {
		t.Fatalf("GetStaffUserByEmail error: %v", err)
	}
	if user.Name != "Bob" || user.ID == "" {
		t.Fatalf("unexpected staff user %+v", user)
	}

	if _, err := repo.GetCustomer(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnsureStaffUserKeepsExisting(t *testing.T) {
	repo := NewMemoryRepository(nil)
	ctx := context.Background()

	first, err := repo.EnsureStaffUser(ctx, model.StaffUserItem{Email: "dana@example.com", Name: "Dana", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("EnsureStaffUser error: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected an id to be assigned")
	}

	second, err := repo.EnsureStaffUser(ctx, model.StaffUserItem{Email: "DANA@example.com", Name: "Other", PasswordHash: "h2"})
	if err != nil {
		t.Fatalf("EnsureStaffUser error: %v", err)
	}
	if second.ID != first.ID || second.Name != "Dana" {
		t.Fatalf("expected the existing account, got %+v", second)
	}
}
