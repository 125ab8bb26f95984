package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"support-chat-backend/internal/model"
	"support-chat-backend/internal/store"

	"github.com/google/uuid"
)

const sessionBuffer = 64

// Hub owns the set of connected sessions. Only Run touches the session
// map; everything else talks to it over channels.
type Hub struct {
	register   chan *Session
	unregister chan *Session
	broadcast  chan []byte
	done       chan struct{}

	sessions map[string]*Session
	count    int64
	relay    Relay
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Session),
		unregister: make(chan *Session),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		sessions:   make(map[string]*Session),
	}
}

// UseRelay forwards accepted typing events to peer instances.
func (h *Hub) UseRelay(r Relay) {
	h.relay = r
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, s := range h.sessions {
				delete(h.sessions, id)
				close(s.send)
				decSessions()
			}
			atomic.StoreInt64(&h.count, 0)
			return

		case s := <-h.register:
			h.sessions[s.ID] = s
			atomic.AddInt64(&h.count, 1)
			incSessions()

		case s := <-h.unregister:
			if _, ok := h.sessions[s.ID]; ok {
				delete(h.sessions, s.ID)
				close(s.send)
				atomic.AddInt64(&h.count, -1)
				decSessions()
			}

		case payload := <-h.broadcast:
			delivered, dropped := 0, 0
			for _, s := range h.sessions {
				select {
				case s.send <- payload:
					delivered++
				default:
					dropped++
				}
			}
			if delivered > 0 {
				addDelivered(delivered)
			}
			if dropped > 0 {
				addDropped(dropped)
				log.Printf("[ws] dropped envelope for %d slow session(s)", dropped)
			}
		}
	}
}

// Connect registers a new session and returns it once the hub has it.
func (h *Hub) Connect() *Session {
	s := &Session{
		ID:   uuid.NewString(),
		send: make(chan []byte, sessionBuffer),
	}
	select {
	case h.register <- s:
	case <-h.done:
		close(s.send)
	}
	return s
}

// Disconnect removes the session. Calling it more than once is harmless.
func (h *Hub) Disconnect(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

func (h *Hub) SessionCount() int {
	return int(atomic.LoadInt64(&h.count))
}

// HandleClientEvent accepts typing envelopes from a session and fans them
// out to every session, the sender included.
func (h *Hub) HandleClientEvent(s *Session, raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		wsClientEventsRejected.Inc()
		return fmt.Errorf("session %s: malformed envelope: %w", s.ID, err)
	}
	if env.Type != TypeTyping {
		wsClientEventsRejected.Inc()
		return fmt.Errorf("session %s: unsupported envelope type %q", s.ID, env.Type)
	}
	chatID := strings.TrimSpace(env.ChatID)
	if chatID == "" {
		wsClientEventsRejected.Inc()
		return fmt.Errorf("session %s: typing event without chatId", s.ID)
	}

	event := TypingEvent{
		Type:     TypeTyping,
		ChatID:   chatID,
		Author:   strings.TrimSpace(env.Author),
		IsTyping: env.IsTyping,
	}
	if err := h.BroadcastTyping(event); err != nil {
		return err
	}
	if h.relay != nil {
		if err := h.relay.PublishTyping(context.Background(), event); err != nil {
			log.Printf("[ws] relay typing for chat %s: %v", chatID, err)
		}
	}
	return nil
}

func (h *Hub) BroadcastTyping(event TypingEvent) error {
	event.Type = TypeTyping
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal typing event: %w", err)
	}
	h.send(payload)
	return nil
}

// BroadcastStoreEvent re-emits chat and message changes; other
// collections are not visible to sessions.
func (h *Hub) BroadcastStoreEvent(event store.ChangeEvent) {
	var kind string
	switch event.Collection {
	case model.CollectionChats:
		kind = TypeChat
	case model.CollectionMessages:
		kind = TypeMessage
	default:
		return
	}

	payload, err := json.Marshal(RecordEvent{
		Type:   kind,
		Action: string(event.Action),
		Record: event.Record,
	})
	if err != nil {
		log.Printf("[ws] marshal %s event: %v", kind, err)
		return
	}
	h.send(payload)
}

// Attach subscribes the hub to the store's change feed.
func (h *Hub) Attach(feed store.Feed) func() {
	unsubChats := feed.Subscribe(model.CollectionChats, h.BroadcastStoreEvent)
	unsubMessages := feed.Subscribe(model.CollectionMessages, h.BroadcastStoreEvent)
	return func() {
		unsubChats()
		unsubMessages()
	}
}

func (h *Hub) send(payload []byte) {
	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}
