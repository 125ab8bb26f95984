package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"support-chat-backend/internal/model"
	"support-chat-backend/internal/store"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, s *Session) Envelope {
	t.Helper()
	select {
	case raw, ok := <-s.Messages():
		if !ok {
			t.Fatal("session closed")
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for envelope")
	}
	return Envelope{}
}

func expectNothing(t *testing.T, s *Session) {
	t.Helper()
	select {
	case raw := <-s.Messages():
		t.Fatalf("unexpected envelope %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeRelay struct {
	mu     sync.Mutex
	events []TypingEvent
}

func (f *fakeRelay) PublishTyping(_ context.Context, e TypingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func TestStoreEventsReachEverySession(t *testing.T) {
	hub := startHub(t)
	a := hub.Connect()
	b := hub.Connect()

	event, _ := store.NewChangeEvent(model.CollectionMessages, store.ActionCreate, model.MessageItem{ID: "m1", ChatParentID: "c1"})
	hub.BroadcastStoreEvent(event)

	for _, s := range []*Session{a, b} {
		env := receive(t, s)
		if env.Type != TypeMessage || env.Action != "create" {
			t.Fatalf("unexpected envelope %+v", env)
		}
		var msg model.MessageItem
		json.Unmarshal(env.Record, &msg)
		if msg.ID != "m1" {
			t.Fatalf("unexpected record %+v", msg)
		}
	}

	ignored, _ := store.NewChangeEvent(model.CollectionCustomers, store.ActionCreate, map[string]string{"id": "u1"})
	hub.BroadcastStoreEvent(ignored)
	expectNothing(t, a)
}

func TestTypingEchoesToSenderAndRelays(t *testing.T) {
	hub := startHub(t)
	relay := &fakeRelay{}
	hub.UseRelay(relay)

	a := hub.Connect()
	b := hub.Connect()

	if err := hub.HandleClientEvent(a, []byte(`{"type":"typing","chatId":"c1","author":"Alice","isTyping":true}`)); err != nil {
		t.Fatalf("HandleClientEvent error: %v", err)
	}

	for _, s := range []*Session{a, b} {
		env := receive(t, s)
		if env.Type != TypeTyping || env.ChatID != "c1" || env.Author != "Alice" || !env.IsTyping {
			t.Fatalf("unexpected typing envelope %+v", env)
		}
	}

	relay.mu.Lock()
	defer relay.mu.Unlock()
	if len(relay.events) != 1 || relay.events[0].ChatID != "c1" {
		t.Fatalf("expected relayed event, got %+v", relay.events)
	}
}

func TestInvalidClientEventsAreDropped(t *testing.T) {
	hub := startHub(t)
	a := hub.Connect()

	cases := []string{
		`not json`,
		`{"type":"message","chatId":"c1"}`,
		`{"type":"typing","chatId":"  "}`,
	}
	for _, raw := range cases {
		if err := hub.HandleClientEvent(a, []byte(raw)); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
	expectNothing(t, a)
}

func TestFullSessionIsSkippedNotBlocking(t *testing.T) {
	hub := startHub(t)
	slow := hub.Connect()
	fast := hub.Connect()

	for i := 0; i < sessionBuffer+10; i++ {
		hub.BroadcastTyping(TypingEvent{ChatID: "c1", Author: "Alice", IsTyping: i%2 == 0})
		<-fast.Messages()
	}

	if got := len(slow.send); got != sessionBuffer {
		t.Fatalf("expected slow buffer to be full at %d, got %d", sessionBuffer, got)
	}
	if hub.SessionCount() != 2 {
		t.Fatalf("slow session should stay connected, got %d sessions", hub.SessionCount())
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	hub := startHub(t)
	s := hub.Connect()

	hub.Disconnect(s)
	hub.Disconnect(s)

	select {
	case _, ok := <-s.Messages():
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("session not closed")
	}
	if hub.SessionCount() != 0 {
		t.Fatalf("expected 0 sessions, got %d", hub.SessionCount())
	}
}

func TestAttachForwardsFeedEvents(t *testing.T) {
	hub := startHub(t)
	feed := store.NewLocalFeed()
	detach := hub.Attach(feed)
	defer detach()

	s := hub.Connect()
	repo := store.NewNotifying(store.NewMemoryRepository(nil), feed)
	repo.CreateChat(context.Background(), model.ChatItem{Author: "Alice", AssignedStaff: model.AuthorAI})

	env := receive(t, s)
	if env.Type != TypeChat || env.Action != "create" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}
