package router

import (
	"net/http"

	"support-chat-backend/internal/api"
	"support-chat-backend/internal/api/endpoints"
	"support-chat-backend/internal/api/middleware"

	"github.com/gorilla/mux"
)

func ChatRoutes(prefix string) api.RouteRegistrar {
	return func(router *mux.Router, s *api.APIServer) {
		chatEndpoints := endpoints.NewChatEndpoints(s.Chat())
		staffOnly := middleware.ValidateStaffJWT(s.Auth())

		// escalated must be registered before the {id} route.
		router.HandleFunc(prefix+"/chats/escalated", s.MakeHTTPHandleFunc(chatEndpoints.EscalatedChats, staffOnly)).Methods(http.MethodGet)
		router.HandleFunc(prefix+"/chats", s.MakeHTTPHandleFunc(chatEndpoints.Chats)).Methods(http.MethodGet, http.MethodPost)
		router.HandleFunc(prefix+"/chats/{id}", s.MakeHTTPHandleFunc(chatEndpoints.GetChat)).Methods(http.MethodGet)
		router.HandleFunc(prefix+"/chats/{id}/assign", s.MakeHTTPHandleFunc(chatEndpoints.AssignStaff, staffOnly)).Methods(http.MethodPost)
	}
}

func MessageRoutes(prefix string) api.RouteRegistrar {
	return func(router *mux.Router, s *api.APIServer) {
		messageEndpoints := endpoints.NewMessageEndpoints(s.Chat())

		router.HandleFunc(prefix+"/messages", s.MakeHTTPHandleFunc(messageEndpoints.PostMessage)).Methods(http.MethodPost)
		router.HandleFunc(prefix+"/messages/{chatId}", s.MakeHTTPHandleFunc(messageEndpoints.ListMessages)).Methods(http.MethodGet)
		router.HandleFunc(prefix+"/messages/{id}/read", s.MakeHTTPHandleFunc(messageEndpoints.MarkRead)).Methods(http.MethodPatch)
	}
}

func CustomerRoutes(prefix string) api.RouteRegistrar {
	return func(router *mux.Router, s *api.APIServer) {
		customerEndpoints := endpoints.NewCustomerEndpoints(s.Chat())

		router.HandleFunc(prefix+"/users", s.MakeHTTPHandleFunc(customerEndpoints.Join)).Methods(http.MethodPost)
		router.HandleFunc(prefix+"/users/{id}", s.MakeHTTPHandleFunc(customerEndpoints.GetCustomer)).Methods(http.MethodGet)
	}
}
