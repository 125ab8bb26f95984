package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"support-chat-backend/internal/websocket"

	gorillaws "github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Conn is the client end of the realtime channel.
type Conn struct {
	conn *gorillaws.Conn

	writeMu sync.Mutex
}

// WebsocketURL turns the server base URL into its upgrade endpoint.
func WebsocketURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/api/ws"
}

func Dial(ctx context.Context, baseURL string, header http.Header) (*Conn, error) {
	conn, _, err := gorillaws.DefaultDialer.DialContext(ctx, WebsocketURL(baseURL), header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", WebsocketURL(baseURL), err)
	}
	return &Conn{conn: conn}, nil
}

// Run delivers every server envelope to handle until the connection fails
// or ctx is cancelled.
func (c *Conn) Run(ctx context.Context, handle func(websocket.Envelope)) error {
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var env websocket.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		handle(env)
	}
}

func (c *Conn) SendTyping(event websocket.TypingEvent) error {
	event.Type = websocket.TypeTyping

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(event)
}

func (c *Conn) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.WriteControl(gorillaws.CloseMessage,
		gorillaws.FormatCloseMessage(gorillaws.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	return c.conn.Close()
}
