package websocket

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler upgrades requests whose Origin is in allowedOrigins. A "*"
// entry or a request without an Origin header is always accepted.
func NewHandler(h *Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return &Handler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed["*"]; ok {
					return true
				}
				_, ok := allowed[strings.TrimRight(origin, "/")]
				return ok
			},
		},
	}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	s := h.hub.Connect()
	log.Printf("[ws] session %s connected from %s", s.ID, r.RemoteAddr)

	go s.writePump(conn)
	go s.readPump(h.hub, conn)
}

func (h *Handler) Hub() *Hub {
	return h.hub
}
