package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
)

// ChangeEvent is published after a write is confirmed by the store.
type ChangeEvent struct {
	Collection string          `json:"collection"`
	Action     Action          `json:"action"`
	Record     json.RawMessage `json:"record"`
}

func NewChangeEvent(collection string, action Action, record interface{}) (ChangeEvent, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return ChangeEvent{}, fmt.Errorf("change event: marshal %s record: %w", collection, err)
	}
	return ChangeEvent{Collection: collection, Action: action, Record: raw}, nil
}

type Handler func(ChangeEvent)

// Feed is the per-collection change subscription of the record store.
type Feed interface {
	Publish(ctx context.Context, event ChangeEvent) error
	// Subscribe registers h for collection and returns a func that removes it.
	Subscribe(collection string, h Handler) func()
	Close() error
}

// LocalFeed delivers events synchronously, in publish order, to the
// subscribers of a single process.
type LocalFeed struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: make(map[string]map[int]Handler)}
}

func (f *LocalFeed) Publish(_ context.Context, event ChangeEvent) error {
	f.mu.RLock()
	handlers := make([]Handler, 0, len(f.subs[event.Collection]))
	for _, h := range f.subs[event.Collection] {
		handlers = append(handlers, h)
	}
	f.mu.RUnlock()

	for _, h := range handlers {
		dispatch(h, event)
	}
	return nil
}

func (f *LocalFeed) Subscribe(collection string, h Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	if f.subs[collection] == nil {
		f.subs[collection] = make(map[int]Handler)
	}
	f.subs[collection][id] = h

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[collection], id)
	}
}

func (f *LocalFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = make(map[string]map[int]Handler)
	return nil
}

func dispatch(h Handler, event ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[feed] subscriber panic on %s/%s: %v", event.Collection, event.Action, r)
		}
	}()
	h(event)
}
