package endpoints

import (
	"net/http"

	"support-chat-backend/internal/dto"
	"support-chat-backend/internal/service/chat"

	"github.com/gorilla/mux"
)

type MessageEndpoints interface {
	PostMessage(http.ResponseWriter, *http.Request) error
	ListMessages(http.ResponseWriter, *http.Request) error
	MarkRead(http.ResponseWriter, *http.Request) error
}

type messageEndpoints struct {
	service *chat.Service
}

func NewMessageEndpoints(service *chat.Service) MessageEndpoints {
	return &messageEndpoints{service: service}
}

func (h *messageEndpoints) PostMessage(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	message, err := h.service.PostMessage(r.Context(), req.ChatParentID, req.Author, req.Message)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusCreated, message)
}

func (h *messageEndpoints) ListMessages(w http.ResponseWriter, r *http.Request) error {
	messages, err := h.service.GetMessages(r.Context(), mux.Vars(r)["chatId"])
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, messages)
}

// MarkRead never fails: an unknown message is answered with 204.
func (h *messageEndpoints) MarkRead(w http.ResponseWriter, r *http.Request) error {
	message, ok := h.service.MarkRead(r.Context(), mux.Vars(r)["id"])
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	return WriteJSON(w, http.StatusOK, message)
}
