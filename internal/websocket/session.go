package websocket

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

// Session is one connected client. The hub closes Messages when the
// session is removed.
type Session struct {
	ID   string
	send chan []byte
}

func (s *Session) Messages() <-chan []byte {
	return s.send
}

// writePump drains the session buffer onto the connection and keeps it
// alive with pings.
func (s *Session) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[ws] write to session %s: %v", s.ID, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[ws] ping session %s: %v", s.ID, err)
				return
			}
		}
	}
}

func (s *Session) readPump(hub *Hub, conn *websocket.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ws] recovered from panic in session %s: %v", s.ID, r)
		}
		hub.Disconnect(s)
		conn.Close()
		log.Printf("[ws] session %s disconnected", s.ID)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				log.Printf("[ws] read from session %s: %v", s.ID, err)
			}
			return
		}

		if err := hub.HandleClientEvent(s, message); err != nil {
			log.Printf("[ws] dropping client event: %v", err)
		}
	}
}
