package middleware

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"support-chat-backend/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// accessRecorder captures what the handler wrote. It must stay hijackable
// for the websocket upgrade.
type accessRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *accessRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *accessRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *accessRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *accessRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("access log: response writer cannot be hijacked")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

type AccessEntry struct {
	Time       string  `json:"time"`
	RequestID  string  `json:"request_id"`
	Method     string  `json:"method"`
	Route      string  `json:"route,omitempty"`
	Path       string  `json:"path"`
	Status     int     `json:"status"`
	Bytes      int     `json:"bytes"`
	DurationMS float64 `json:"duration_ms"`
	ClientIP   string  `json:"client_ip"`
	UserAgent  string  `json:"user_agent,omitempty"`
}

// Logging writes one JSON access line per request and tags the request
// with an id, reusing the caller's X-Request-ID when present.
func Logging() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, reqID))

			rec := &accessRecorder{ResponseWriter: w}
			next(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			entry := AccessEntry{
				Time:       start.UTC().Format(time.RFC3339),
				RequestID:  reqID,
				Method:     r.Method,
				Route:      routeTemplate(r),
				Path:       r.URL.Path,
				Status:     rec.status,
				Bytes:      rec.bytes,
				DurationMS: float64(time.Since(start).Microseconds()) / 1000,
				ClientIP:   utils.RealClientIP(r),
				UserAgent:  r.UserAgent(),
			}

			data, err := json.Marshal(entry)
			if err != nil {
				log.Printf("[access] marshal entry: %v", err)
				return
			}
			log.Printf("[access] %s", data)
		}
	}
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return ""
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return ""
	}
	return tpl
}
