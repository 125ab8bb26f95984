package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const typingChannel = "ws:typing"

// Relay carries typing events between hub instances.
type Relay interface {
	PublishTyping(ctx context.Context, event TypingEvent) error
}

type relayMessage struct {
	Origin string      `json:"origin"`
	Event  TypingEvent `json:"event"`
}

// RedisRelay publishes typing events on a shared Redis channel and replays
// events from other instances into the local hub.
type RedisRelay struct {
	client   *redis.Client
	instance string
}

func NewRedisRelay(client *redis.Client) *RedisRelay {
	return &RedisRelay{client: client, instance: uuid.NewString()}
}

func (r *RedisRelay) PublishTyping(ctx context.Context, event TypingEvent) error {
	payload, err := json.Marshal(relayMessage{Origin: r.instance, Event: event})
	if err != nil {
		return fmt.Errorf("relay: marshal typing: %w", err)
	}
	if err := r.client.Publish(ctx, typingChannel, payload).Err(); err != nil {
		return fmt.Errorf("relay: redis publish: %w", err)
	}
	return nil
}

// Run feeds typing events from peer instances into hub until ctx ends.
func (r *RedisRelay) Run(ctx context.Context, hub *Hub) {
	sub := r.client.Subscribe(ctx, typingChannel)
	defer sub.Close()

	log.Printf("[ws] relay subscribed to %s as %s", typingChannel, r.instance)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rm relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &rm); err != nil {
				log.Printf("[ws] relay dropping malformed payload: %v", err)
				continue
			}
			if rm.Origin == r.instance {
				continue
			}
			if err := hub.BroadcastTyping(rm.Event); err != nil {
				log.Printf("[ws] relay broadcast: %v", err)
			}
		}
	}
}
