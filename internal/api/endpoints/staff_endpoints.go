package endpoints

import (
	"net/http"

	"support-chat-backend/internal/api/middleware"
	"support-chat-backend/internal/dto"
	"support-chat-backend/internal/service/auth"
)

type StaffEndpoints interface {
	Login(http.ResponseWriter, *http.Request) error
	Me(http.ResponseWriter, *http.Request) error
}

type staffEndpoints struct {
	service *auth.Service
}

func NewStaffEndpoints(service *auth.Service) StaffEndpoints {
	return &staffEndpoints{service: service}
}

func (h *staffEndpoints) Login(w http.ResponseWriter, r *http.Request) error {
	var req dto.StaffLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	result, err := h.service.Login(r.Context(), auth.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.StaffLoginResponse{
		Token:     result.Tokens.AccessToken,
		ExpiresAt: result.Tokens.ExpiresAt,
		Staff: dto.StaffResponse{
			ID:    result.User.ID,
			Email: result.User.Email,
			Name:  result.User.Name,
		},
	})
}

func (h *staffEndpoints) Me(w http.ResponseWriter, r *http.Request) error {
	staff, ok := middleware.StaffFromContext(r.Context())
	if !ok {
		return &HTTPError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	return WriteJSON(w, http.StatusOK, dto.StaffResponse{ID: staff.ID, Email: staff.Email, Name: staff.Name})
}
