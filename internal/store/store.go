package store

import (
	"context"
	"errors"

	"support-chat-backend/internal/model"
)

var (
	ErrNotFound        = errors.New("store: not found")
	ErrConditionFailed = errors.New("store: condition failed")
)

// ChatFilter narrows ListChats. A nil NeedsHuman lists every chat.
type ChatFilter struct {
	NeedsHuman *bool
}

// Repository is the record store. Every create assigns the id and a
// strictly increasing created timestamp. Chats are listed newest first,
// messages oldest first.
type Repository interface {
	CreateChat(ctx context.Context, chat model.ChatItem) (model.ChatItem, error)
	GetChat(ctx context.Context, id string) (model.ChatItem, error)
	ListChats(ctx context.Context, filter ChatFilter) ([]model.ChatItem, error)
	// AssignStaff sets assignedStaff. With onlyIfUnclaimed it returns
	// ErrConditionFailed when another named staff member holds the chat.
	AssignStaff(ctx context.Context, chatID, staffName string, onlyIfUnclaimed bool) (model.ChatItem, error)
	MarkNeedsHuman(ctx context.Context, chatID string) (model.ChatItem, error)

	CreateMessage(ctx context.Context, message model.MessageItem) (model.MessageItem, error)
	GetMessage(ctx context.Context, id string) (model.MessageItem, error)
	ListMessages(ctx context.Context, chatID string) ([]model.MessageItem, error)
	MarkMessageRead(ctx context.Context, id string) (model.MessageItem, error)

	CreateCustomer(ctx context.Context, customer model.CustomerItem) (model.CustomerItem, error)
	GetCustomer(ctx context.Context, id string) (model.CustomerItem, error)
	GetStaffUserByEmail(ctx context.Context, email string) (model.StaffUserItem, error)
}

// claimable reports whether staffName may take a chat currently assigned
// to current without overwriting a different staff member.
func claimable(current, staffName string) bool {
	return current == "" || current == model.AuthorAI || current == staffName
}

// StaffSeeder creates the bootstrap staff account.
type StaffSeeder interface {
	EnsureStaffUser(ctx context.Context, user model.StaffUserItem) (model.StaffUserItem, error)
}
