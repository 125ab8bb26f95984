package router

import (
	"net/http"

	"support-chat-backend/internal/api"
	"support-chat-backend/internal/api/endpoints"
	"support-chat-backend/internal/api/middleware"
	"support-chat-backend/internal/websocket"

	"github.com/gorilla/mux"
)

func UtilsRoutes(prefix string) api.RouteRegistrar {
	return func(router *mux.Router, s *api.APIServer) {
		var hub *websocket.Hub
		if s.Websocket() != nil {
			hub = s.Websocket().Hub()
		}
		utilsEndpoints := endpoints.NewUtilsEndpoints(hub)
		router.HandleFunc(prefix+"/health", s.MakeHTTPHandleFunc(utilsEndpoints.Health)).Methods(http.MethodGet)
	}
}

// WebsocketRoutes mounts the upgrade endpoint outside the request queue: a
// session holds its connection for its whole lifetime.
func WebsocketRoutes(prefix string) api.RouteRegistrar {
	return func(router *mux.Router, s *api.APIServer) {
		if s.Websocket() == nil {
			return
		}
		handler := middleware.Chain(s.Websocket().ServeWS, middleware.Logging())
		router.HandleFunc(prefix+"/ws", handler).Methods(http.MethodGet)
	}
}

// All returns every registrar mounted under prefix.
func All(prefix string) []api.RouteRegistrar {
	return []api.RouteRegistrar{
		UtilsRoutes(prefix),
		CustomerRoutes(prefix),
		ChatRoutes(prefix),
		MessageRoutes(prefix),
		StaffRoutes(prefix),
		WebsocketRoutes(prefix),
	}
}
