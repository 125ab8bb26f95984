package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
)

const redisFeedPrefix = "store:"

// RedisFeed fans change events out over Redis pub/sub so that every
// relay instance sees writes made by any other instance.
type RedisFeed struct {
	client *redis.Client

	mu      sync.Mutex
	pubsubs []*redis.PubSub
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func channelFor(collection string) string {
	return redisFeedPrefix + collection
}

func (f *RedisFeed) Publish(ctx context.Context, event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis feed: marshal event: %w", err)
	}
	if err := f.client.Publish(ctx, channelFor(event.Collection), payload).Err(); err != nil {
		return fmt.Errorf("redis feed: publish: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(collection string, h Handler) func() {
	ctx, cancel := context.WithCancel(context.Background())
	sub := f.client.Subscribe(ctx, channelFor(collection))

	f.mu.Lock()
	f.pubsubs = append(f.pubsubs, sub)
	f.mu.Unlock()

	go func() {
		log.Printf("[feed] subscribed to redis channel %s", channelFor(collection))
		for msg := range sub.Channel() {
			var event ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("[feed] dropping malformed event on %s: %v", msg.Channel, err)
				continue
			}
			dispatch(h, event)
		}
		log.Printf("[feed] unsubscribed from redis channel %s", channelFor(collection))
	}()

	return func() {
		cancel()
		sub.Close()
	}
}

func (f *RedisFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.pubsubs {
		sub.Close()
	}
	f.pubsubs = nil
	return nil
}
