package endpoints

import (
	"net/http"
	"strings"

	"support-chat-backend/internal/api/middleware"
	"support-chat-backend/internal/dto"
	"support-chat-backend/internal/service/chat"

	"github.com/gorilla/mux"
)

type ChatEndpoints interface {
	Chats(http.ResponseWriter, *http.Request) error
	EscalatedChats(http.ResponseWriter, *http.Request) error
	GetChat(http.ResponseWriter, *http.Request) error
	AssignStaff(http.ResponseWriter, *http.Request) error
}

type chatEndpoints struct {
	service *chat.Service
}

func NewChatEndpoints(service *chat.Service) ChatEndpoints {
	return &chatEndpoints{service: service}
}

func (h *chatEndpoints) Chats(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListChats,
		http.MethodPost: h.handleCreateChat,
	})
}

func (h *chatEndpoints) handleCreateChat(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	created, err := h.service.CreateChat(r.Context(), req.Author)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusCreated, created)
}

func (h *chatEndpoints) handleListChats(w http.ResponseWriter, r *http.Request) error {
	chats, err := h.service.ListChats(r.Context())
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, chats)
}

func (h *chatEndpoints) EscalatedChats(w http.ResponseWriter, r *http.Request) error {
	chats, err := h.service.ListEscalatedChats(r.Context())
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, chats)
}

func (h *chatEndpoints) GetChat(w http.ResponseWriter, r *http.Request) error {
	found, err := h.service.GetChat(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, found)
}

// AssignStaff hands the chat to a staff member. Without a staffName in the
// body the authenticated staff member's name is used.
func (h *chatEndpoints) AssignStaff(w http.ResponseWriter, r *http.Request) error {
	var req dto.AssignStaffRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			return err
		}
	}

	staffName := strings.TrimSpace(req.StaffName)
	if staffName == "" {
		if staff, ok := middleware.StaffFromContext(r.Context()); ok {
			staffName = staff.Name
		}
	}

	updated, err := h.service.AssignStaff(r.Context(), mux.Vars(r)["id"], staffName)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, updated)
}
