package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"support-chat-backend/internal/api/middleware"
	"support-chat-backend/internal/queue"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// MakeHTTPHandleFunc runs f on the request queue and renders any error it
// returns. authMiddleware wraps the queued handler.
func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)

		s.requestQueueManager.EnqueueJob(queue.Job{
			Fn: func() error {
				return f(w, r)
			},
			Errc: errc,
		})

		if err := <-errc; err != nil {
			reqID := middleware.RequestIDFromContext(r.Context())
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				if httpErr.ErrorLog != nil {
					log.Printf("[api] %s %s (%s): %v", r.Method, r.URL.Path, reqID, httpErr.ErrorLog)
				}
				WriteJSON(w, httpErr.StatusCode, ErrorResponse{Message: httpErr.Message, Code: httpErr.Code})
			} else {
				log.Printf("[api] %s %s (%s): %v", r.Method, r.URL.Path, reqID, err)
				WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "Internal server error", Code: "internal_error"})
			}
		}
	}

	handler := middleware.Chain(baseHandler, authMiddleware...)
	return middleware.Chain(handler, middleware.Logging())
}
