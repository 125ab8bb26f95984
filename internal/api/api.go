package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"support-chat-backend/internal/api/middleware"
	"support-chat-backend/internal/queue"
	"support-chat-backend/internal/service/auth"
	"support-chat-backend/internal/service/chat"
	"support-chat-backend/internal/websocket"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

type RouteRegistrar func(router *mux.Router, s *APIServer)

type Options struct {
	ListenAddr     string
	AllowedOrigins []string
	// Registry receives the HTTP collectors; nil uses the default registerer.
	Registry *prometheus.Registry
}

type APIServer struct {
	listenAddr          string
	allowedOrigins      []string
	requestQueueManager *queue.RequestQueueManager
	chat                *chat.Service
	auth                *auth.Service
	ws                  *websocket.Handler
	routeRegistrars     []RouteRegistrar
	metrics             *metrics
	server              *http.Server
}

func NewAPIServer(
	opts Options,
	rqm *queue.RequestQueueManager,
	chatService *chat.Service,
	authService *auth.Service,
	ws *websocket.Handler,
	registrars ...RouteRegistrar,
) *APIServer {
	return &APIServer{
		listenAddr:          opts.ListenAddr,
		allowedOrigins:      opts.AllowedOrigins,
		requestQueueManager: rqm,
		chat:                chatService,
		auth:                authService,
		ws:                  ws,
		routeRegistrars:     registrars,
		metrics:             newMetrics(opts.Registry, opts.ListenAddr, rqm),
	}
}

// Handler builds the full HTTP handler: routes, metrics and CORS.
func (s *APIServer) Handler() http.Handler {
	router := mux.NewRouter()

	for _, reg := range s.routeRegistrars {
		reg(router, s)
	}

	router.Handle("/metrics", s.metrics.metricsHandler()).Methods(http.MethodGet)

	c := middleware.NewCORS(middleware.CORSConfig{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(s.metrics.instrument(router))
}

func (s *APIServer) Run() error {
	s.server = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("[api] listening on %s", s.listenAddr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *APIServer) Chat() *chat.Service {
	return s.chat
}

func (s *APIServer) Auth() *auth.Service {
	return s.auth
}

func (s *APIServer) Websocket() *websocket.Handler {
	return s.ws
}
