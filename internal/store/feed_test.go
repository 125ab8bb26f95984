package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"support-chat-backend/internal/model"
)

type recorder struct {
	events []ChangeEvent
}

func (r *recorder) handle(e ChangeEvent) { r.events = append(r.events, e) }

func TestLocalFeedSubscribeAndUnsubscribe(t *testing.T) {
	feed := NewLocalFeed()
	rec := &recorder{}
	unsubscribe := feed.Subscribe(model.CollectionMessages, rec.handle)

	event, err := NewChangeEvent(model.CollectionMessages, ActionCreate, map[string]string{"id": "m1"})
	if err != nil {
		t.Fatalf("NewChangeEvent error: %v", err)
	}
	other, _ := NewChangeEvent(model.CollectionChats, ActionCreate, map[string]string{"id": "c1"})

	feed.Publish(context.Background(), event)
	feed.Publish(context.Background(), other)
	if len(rec.events) != 1 || rec.events[0].Collection != model.CollectionMessages {
		t.Fatalf("unexpected events %+v", rec.events)
	}

	unsubscribe()
	feed.Publish(context.Background(), event)
	if len(rec.events) != 1 {
		t.Fatalf("expected no delivery after unsubscribe, got %d", len(rec.events))
	}
}

func TestLocalFeedSurvivesPanickingSubscriber(t *testing.T) {
	feed := NewLocalFeed()
	rec := &recorder{}
	feed.Subscribe(model.CollectionChats, func(ChangeEvent) { panic("boom") })
	feed.Subscribe(model.CollectionChats, rec.handle)

	event, _ := NewChangeEvent(model.CollectionChats, ActionUpdate, map[string]string{"id": "c1"})
	feed.Publish(context.Background(), event)

	if len(rec.events) != 1 {
		t.Fatalf("expected healthy subscriber to receive event, got %d", len(rec.events))
	}
}

func TestNotifyingPublishesConfirmedWrites(t *testing.T) {
	feed := NewLocalFeed()
	chats := &recorder{}
	messages := &recorder{}
	feed.Subscribe(model.CollectionChats, chats.handle)
	feed.Subscribe(model.CollectionMessages, messages.handle)

	repo := NewNotifying(NewMemoryRepository(nil), feed)
	ctx := context.Background()

	chat, err := repo.CreateChat(ctx, model.ChatItem{Author: "Alice", AssignedStaff: model.AuthorAI})
	if err != nil {
		t.Fatalf("CreateChat error: %v", err)
	}
	msg, _ := repo.CreateMessage(ctx, model.MessageItem{ChatParentID: chat.ID, Author: "Alice", Message: "hi", Sent: true})
	repo.MarkMessageRead(ctx, msg.ID)
	repo.AssignStaff(ctx, chat.ID, "Bob", false)

	if _, err := repo.MarkNeedsHuman(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if len(chats.events) != 2 {
		t.Fatalf("expected 2 chat events, got %d", len(chats.events))
	}
	if chats.events[0].Action != ActionCreate || chats.events[1].Action != ActionUpdate {
		t.Fatalf("unexpected chat actions %+v", chats.events)
	}

	var assigned model.ChatItem
	if err := json.Unmarshal(chats.events[1].Record, &assigned); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if assigned.AssignedStaff != "Bob" {
		t.Fatalf("expected assigned record, got %+v", assigned)
	}

	if len(messages.events) != 2 || messages.events[1].Action != ActionUpdate {
		t.Fatalf("unexpected message events %+v", messages.events)
	}
}
