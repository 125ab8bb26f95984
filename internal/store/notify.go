package store

import (
	"context"
	"log"

	"support-chat-backend/internal/model"
)

// Notifying publishes a ChangeEvent after each write the wrapped
// repository confirms. Reads pass straight through.
type Notifying struct {
	Repository
	feed Feed
}

func NewNotifying(repo Repository, feed Feed) *Notifying {
	return &Notifying{Repository: repo, feed: feed}
}

func (n *Notifying) publish(ctx context.Context, collection string, action Action, record interface{}) {
	event, err := NewChangeEvent(collection, action, record)
	if err == nil {
		err = n.feed.Publish(ctx, event)
	}
	if err != nil {
		log.Printf("[store] publish %s/%s failed: %v", collection, action, err)
	}
}

func (n *Notifying) CreateChat(ctx context.Context, chat model.ChatItem) (model.ChatItem, error) {
	created, err := n.Repository.CreateChat(ctx, chat)
	if err != nil {
		return created, err
	}
	n.publish(ctx, model.CollectionChats, ActionCreate, created)
	return created, nil
}

func (n *Notifying) AssignStaff(ctx context.Context, chatID, staffName string, onlyIfUnclaimed bool) (model.ChatItem, error) {
	chat, err := n.Repository.AssignStaff(ctx, chatID, staffName, onlyIfUnclaimed)
	if err != nil {
		return chat, err
	}
	n.publish(ctx, model.CollectionChats, ActionUpdate, chat)
	return chat, nil
}

func (n *Notifying) MarkNeedsHuman(ctx context.Context, chatID string) (model.ChatItem, error) {
	chat, err := n.Repository.MarkNeedsHuman(ctx, chatID)
	if err != nil {
		return chat, err
	}
	n.publish(ctx, model.CollectionChats, ActionUpdate, chat)
	return chat, nil
}

func (n *Notifying) CreateMessage(ctx context.Context, message model.MessageItem) (model.MessageItem, error) {
	created, err := n.Repository.CreateMessage(ctx, message)
	if err != nil {
		return created, err
	}
	n.publish(ctx, model.CollectionMessages, ActionCreate, created)
	return created, nil
}

func (n *Notifying) MarkMessageRead(ctx context.Context, id string) (model.MessageItem, error) {
	message, err := n.Repository.MarkMessageRead(ctx, id)
	if err != nil {
		return message, err
	}
	n.publish(ctx, model.CollectionMessages, ActionUpdate, message)
	return message, nil
}

func (n *Notifying) CreateCustomer(ctx context.Context, customer model.CustomerItem) (model.CustomerItem, error) {
	created, err := n.Repository.CreateCustomer(ctx, customer)
	if err != nil {
		return created, err
	}
	n.publish(ctx, model.CollectionCustomers, ActionCreate, created)
	return created, nil
}
