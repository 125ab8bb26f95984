package router

import (
	"net/http"

	"support-chat-backend/internal/api"
	"support-chat-backend/internal/api/endpoints"
	"support-chat-backend/internal/api/middleware"

	"github.com/gorilla/mux"
)

func StaffRoutes(prefix string) api.RouteRegistrar {
	return func(router *mux.Router, s *api.APIServer) {
		staffEndpoints := endpoints.NewStaffEndpoints(s.Auth())
		router.HandleFunc(prefix+"/staff/login", s.MakeHTTPHandleFunc(staffEndpoints.Login)).Methods(http.MethodPost)
		router.HandleFunc(prefix+"/staff/me", s.MakeHTTPHandleFunc(staffEndpoints.Me, middleware.ValidateStaffJWT(s.Auth()))).Methods(http.MethodGet)
	}
}
