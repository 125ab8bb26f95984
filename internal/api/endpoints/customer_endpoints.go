package endpoints

import (
	"net/http"

	"support-chat-backend/internal/dto"
	"support-chat-backend/internal/service/chat"

	"github.com/gorilla/mux"
)

type CustomerEndpoints interface {
	Join(http.ResponseWriter, *http.Request) error
	GetCustomer(http.ResponseWriter, *http.Request) error
}

type customerEndpoints struct {
	service *chat.Service
}

func NewCustomerEndpoints(service *chat.Service) CustomerEndpoints {
	return &customerEndpoints{service: service}
}

func (h *customerEndpoints) Join(w http.ResponseWriter, r *http.Request) error {
	var req dto.JoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	customer, err := h.service.JoinCustomer(r.Context(), req.Username)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusCreated, customer)
}

func (h *customerEndpoints) GetCustomer(w http.ResponseWriter, r *http.Request) error {
	customer, err := h.service.GetCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, customer)
}
