// Package client keeps a local view of one chat in step with the server:
// it reloads from the store on open, upserts pushed records, marks
// counterparty messages read while focused and debounces typing signals.
package client

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"support-chat-backend/internal/model"
	"support-chat-backend/internal/websocket"
)

// TypingWindow is how long a typing signal stays valid in either direction.
const TypingWindow = 2 * time.Second

type Role int

const (
	RoleCustomer Role = iota
	RoleStaff
)

type API interface {
	GetChat(ctx context.Context, id string) (model.ChatItem, error)
	ListMessages(ctx context.Context, chatID string) ([]model.MessageItem, error)
	SendMessage(ctx context.Context, chatID, author, text string) (model.MessageItem, error)
	MarkRead(ctx context.Context, messageID string) error
}

type TypingSender interface {
	SendTyping(event websocket.TypingEvent) error
}

type stopper interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) stopper

type Options struct {
	Role Role
	// Author is the customer's username; staff sessions always write as "staff".
	Author   string
	API      API
	Typing   TypingSender
	OnChange func()

	after afterFunc
}

type Session struct {
	api      API
	typing   TypingSender
	role     Role
	author   string
	onChange func()
	after    afterFunc

	mu         sync.Mutex
	chat       model.ChatItem
	messages   []model.MessageItem
	focused    bool
	peerTyping bool
	peerTimer  stopper
	peerGen    int
	ownTimer   stopper
	ownGen     int
}

func NewSession(opts Options) *Session {
	if opts.after == nil {
		opts.after = func(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) }
	}
	author := strings.TrimSpace(opts.Author)
	if opts.Role == RoleStaff {
		author = model.AuthorStaff
	}
	return &Session{
		api:      opts.API,
		typing:   opts.Typing,
		role:     opts.Role,
		author:   author,
		onChange: opts.OnChange,
		after:    opts.after,
	}
}

// Open replaces the local state with the chat's full history.
func (s *Session) Open(ctx context.Context, chatID string) error {
	chat, err := s.api.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	messages, err := s.api.ListMessages(ctx, chatID)
	if err != nil {
		return err
	}
	sortByCreated(messages)

	s.mu.Lock()
	s.chat = chat
	s.messages = messages
	s.peerTyping = false
	s.peerGen++
	if s.peerTimer != nil {
		s.peerTimer.Stop()
		s.peerTimer = nil
	}
	pending := s.unreadLocked()
	s.mu.Unlock()

	s.markRead(ctx, pending)
	s.changed()
	return nil
}

// Apply reconciles one server envelope with the local view.
func (s *Session) Apply(ctx context.Context, env websocket.Envelope) {
	switch env.Type {
	case websocket.TypeMessage:
		s.applyMessage(ctx, env.Record)
	case websocket.TypeChat:
		s.applyChat(env.Record)
	case websocket.TypeTyping:
		s.applyTyping(env)
	}
}

func (s *Session) applyMessage(ctx context.Context, raw json.RawMessage) {
	var message model.MessageItem
	if err := json.Unmarshal(raw, &message); err != nil {
		log.Printf("[client] bad message record: %v", err)
		return
	}

	s.mu.Lock()
	if s.chat.ID == "" || message.ChatParentID != s.chat.ID {
		s.mu.Unlock()
		return
	}
	s.upsertLocked(message)
	var pending []string
	if s.focused && s.isCounterparty(message.Author) && !message.Read {
		pending = []string{message.ID}
	}
	s.mu.Unlock()

	s.markRead(ctx, pending)
	s.changed()
}

func (s *Session) applyChat(raw json.RawMessage) {
	var chat model.ChatItem
	if err := json.Unmarshal(raw, &chat); err != nil {
		log.Printf("[client] bad chat record: %v", err)
		return
	}

	s.mu.Lock()
	if s.chat.ID == "" || chat.ID != s.chat.ID {
		s.mu.Unlock()
		return
	}
	s.chat = chat
	s.mu.Unlock()
	s.changed()
}

func (s *Session) applyTyping(env websocket.Envelope) {
	s.mu.Lock()
	if s.chat.ID == "" || env.ChatID != s.chat.ID || !s.isCounterparty(env.Author) {
		s.mu.Unlock()
		return
	}

	s.peerGen++
	if s.peerTimer != nil {
		s.peerTimer.Stop()
		s.peerTimer = nil
	}
	s.peerTyping = env.IsTyping
	if env.IsTyping {
		gen := s.peerGen
		s.peerTimer = s.after(TypingWindow, func() { s.expirePeerTyping(gen) })
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Session) expirePeerTyping(gen int) {
	s.mu.Lock()
	if gen != s.peerGen {
		s.mu.Unlock()
		return
	}
	s.peerTyping = false
	s.peerTimer = nil
	s.mu.Unlock()
	s.changed()
}

// SetFocus records whether the chat is visible. Gaining focus marks every
// unread counterparty message as read.
func (s *Session) SetFocus(ctx context.Context, focused bool) {
	s.mu.Lock()
	s.focused = focused
	var pending []string
	if focused {
		pending = s.unreadLocked()
	}
	s.mu.Unlock()

	s.markRead(ctx, pending)
}

// Keystroke reports the current draft. A non-empty draft emits typing:true
// and restarts the debounce timer.
func (s *Session) Keystroke(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	chatID := s.chat.ID
	if chatID == "" {
		s.mu.Unlock()
		return
	}
	s.ownGen++
	if s.ownTimer != nil {
		s.ownTimer.Stop()
	}
	gen := s.ownGen
	s.ownTimer = s.after(TypingWindow, func() { s.expireOwnTyping(gen) })
	s.mu.Unlock()

	s.emitTyping(chatID, true)
}

func (s *Session) expireOwnTyping(gen int) {
	s.mu.Lock()
	if gen != s.ownGen {
		s.mu.Unlock()
		return
	}
	chatID := s.chat.ID
	s.ownTimer = nil
	s.mu.Unlock()

	s.emitTyping(chatID, false)
}

// Send stops the outbound typing signal and posts text to the open chat.
func (s *Session) Send(ctx context.Context, text string) (model.MessageItem, error) {
	s.mu.Lock()
	chatID := s.chat.ID
	s.ownGen++
	if s.ownTimer != nil {
		s.ownTimer.Stop()
		s.ownTimer = nil
	}
	s.mu.Unlock()

	if chatID != "" {
		s.emitTyping(chatID, false)
	}

	message, err := s.api.SendMessage(ctx, chatID, s.author, text)
	if err != nil {
		return model.MessageItem{}, err
	}

	s.mu.Lock()
	if message.ChatParentID == s.chat.ID {
		s.upsertLocked(message)
	}
	s.mu.Unlock()
	s.changed()
	return message, nil
}

func (s *Session) Chat() model.ChatItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat
}

func (s *Session) Messages() []model.MessageItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MessageItem, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) PeerTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peerTyping
}

func (s *Session) isCounterparty(author string) bool {
	who := model.ParseAuthor(author)
	if s.role == RoleStaff {
		return who.IsCustomer()
	}
	return !who.IsCustomer()
}

func (s *Session) upsertLocked(message model.MessageItem) {
	for i := range s.messages {
		if s.messages[i].ID == message.ID {
			s.messages[i] = message
			sortByCreated(s.messages)
			return
		}
	}
	s.messages = append(s.messages, message)
	sortByCreated(s.messages)
}

func (s *Session) unreadLocked() []string {
	if !s.focused {
		return nil
	}
	var ids []string
	for _, m := range s.messages {
		if !m.Read && s.isCounterparty(m.Author) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func (s *Session) markRead(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := s.api.MarkRead(ctx, id); err != nil {
			log.Printf("[client] mark read %s: %v", id, err)
		}
	}
}

func (s *Session) emitTyping(chatID string, isTyping bool) {
	if s.typing == nil {
		return
	}
	err := s.typing.SendTyping(websocket.TypingEvent{
		Type:     websocket.TypeTyping,
		ChatID:   chatID,
		Author:   s.author,
		IsTyping: isTyping,
	})
	if err != nil {
		log.Printf("[client] send typing: %v", err)
	}
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func sortByCreated(messages []model.MessageItem) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Created < messages[j].Created
	})
}
