package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"support-chat-backend/internal/model"

	"github.com/google/uuid"
)

// MemoryRepository keeps every collection in process. It backs local
// development and the tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	clock     *Clock
	chats     map[string]model.ChatItem
	messages  map[string]model.MessageItem
	customers map[string]model.CustomerItem
	staff     map[string]model.StaffUserItem
}

func NewMemoryRepository(now func() time.Time) *MemoryRepository {
	return &MemoryRepository{
		clock:     NewClock(now),
		chats:     make(map[string]model.ChatItem),
		messages:  make(map[string]model.MessageItem),
		customers: make(map[string]model.CustomerItem),
		staff:     make(map[string]model.StaffUserItem),
	}
}

// EnsureStaffUser stores user unless an account with the same email exists.
func (r *MemoryRepository) EnsureStaffUser(_ context.Context, user model.StaffUserItem) (model.StaffUserItem, error) {
	r.mu.Lock()
	existing, ok := r.staff[strings.ToLower(user.Email)]
	r.mu.Unlock()
	if ok {
		return existing, nil
	}
	r.SeedStaffUser(user)
	return r.GetStaffUserByEmail(context.Background(), user.Email)
}

// SeedStaffUser adds a staff account keyed by lower-cased email.
func (r *MemoryRepository) SeedStaffUser(user model.StaffUserItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.staff[strings.ToLower(user.Email)] = user
}

func (r *MemoryRepository) CreateChat(_ context.Context, chat model.ChatItem) (model.ChatItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat.ID = uuid.NewString()
	chat.Created = r.clock.Next()
	chat.Updated = chat.Created
	r.chats[chat.ID] = chat
	return chat, nil
}

func (r *MemoryRepository) GetChat(_ context.Context, id string) (model.ChatItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chat, ok := r.chats[id]
	if !ok {
		return model.ChatItem{}, ErrNotFound
	}
	return chat, nil
}

func (r *MemoryRepository) ListChats(_ context.Context, filter ChatFilter) ([]model.ChatItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chats := make([]model.ChatItem, 0, len(r.chats))
	for _, chat := range r.chats {
		if filter.NeedsHuman != nil && chat.NeedsHuman != *filter.NeedsHuman {
			continue
		}
		chats = append(chats, chat)
	}
	sortChatsDesc(chats)
	return chats, nil
}

func (r *MemoryRepository) AssignStaff(_ context.Context, chatID, staffName string, onlyIfUnclaimed bool) (model.ChatItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[chatID]
	if !ok {
		return model.ChatItem{}, ErrNotFound
	}
	if onlyIfUnclaimed && !claimable(chat.AssignedStaff, staffName) {
		return model.ChatItem{}, ErrConditionFailed
	}
	chat.AssignedStaff = staffName
	chat.Updated = r.clock.Next()
	r.chats[chatID] = chat
	return chat, nil
}

func (r *MemoryRepository) MarkNeedsHuman(_ context.Context, chatID string) (model.ChatItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[chatID]
	if !ok {
		return model.ChatItem{}, ErrNotFound
	}
	chat.NeedsHuman = true
	chat.Updated = r.clock.Next()
	r.chats[chatID] = chat
	return chat, nil
}

func (r *MemoryRepository) CreateMessage(_ context.Context, message model.MessageItem) (model.MessageItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message.ID = uuid.NewString()
	message.Created = r.clock.Next()
	r.messages[message.ID] = message
	return message, nil
}

func (r *MemoryRepository) GetMessage(_ context.Context, id string) (model.MessageItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	message, ok := r.messages[id]
	if !ok {
		return model.MessageItem{}, ErrNotFound
	}
	return message, nil
}

func (r *MemoryRepository) ListMessages(_ context.Context, chatID string) ([]model.MessageItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]model.MessageItem, 0)
	for _, message := range r.messages {
		if message.ChatParentID == chatID {
			messages = append(messages, message)
		}
	}
	sortMessagesAsc(messages)
	return messages, nil
}

func (r *MemoryRepository) MarkMessageRead(_ context.Context, id string) (model.MessageItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[id]
	if !ok {
		return model.MessageItem{}, ErrNotFound
	}
	message.Read = true
	r.messages[id] = message
	return message, nil
}

func (r *MemoryRepository) CreateCustomer(_ context.Context, customer model.CustomerItem) (model.CustomerItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer.ID = uuid.NewString()
	customer.Created = r.clock.Next()
	r.customers[customer.ID] = customer
	return customer, nil
}

func (r *MemoryRepository) GetCustomer(_ context.Context, id string) (model.CustomerItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.customers[id]
	if !ok {
		return model.CustomerItem{}, ErrNotFound
	}
	return customer, nil
}

func (r *MemoryRepository) GetStaffUserByEmail(_ context.Context, email string) (model.StaffUserItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.staff[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.StaffUserItem{}, ErrNotFound
	}
	return user, nil
}

func sortChatsDesc(chats []model.ChatItem) {
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].Created > chats[j].Created
	})
}

func sortMessagesAsc(messages []model.MessageItem) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Created == messages[j].Created {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].Created < messages[j].Created
	})
}
