package endpoints

import (
	"net/http"

	"support-chat-backend/internal/websocket"
)

type UtilsEndpoints interface {
	Health(http.ResponseWriter, *http.Request) error
}

type utilsEndpoints struct {
	hub *websocket.Hub
}

func NewUtilsEndpoints(hub *websocket.Hub) UtilsEndpoints {
	return &utilsEndpoints{hub: hub}
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (h *utilsEndpoints) Health(w http.ResponseWriter, r *http.Request) error {
	resp := healthResponse{Status: "ok"}
	if h.hub != nil {
		resp.Sessions = h.hub.SessionCount()
	}
	return WriteJSON(w, http.StatusOK, resp)
}
