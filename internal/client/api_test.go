package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"support-chat-backend/internal/dto"
	"support-chat-backend/internal/model"
)

func TestHTTPAPIRequests(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/staff/login":
			json.NewEncoder(w).Encode(dto.StaffLoginResponse{Token: "tok", Staff: dto.StaffResponse{Name: "Dana"}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/chats/escalated":
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode([]model.ChatItem{{ID: "c1", NeedsHuman: true}})
		case r.Method == http.MethodPatch && r.URL.Path == "/api/messages/m1/read":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/api/chats/missing":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "chat not found"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	api := NewHTTPAPI(srv.URL+"/", nil)
	ctx := context.Background()

	if _, err := api.Login(ctx, "dana@example.com", "pw"); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	chats, err := api.ListEscalatedChats(ctx)
	if err != nil {
		t.Fatalf("ListEscalatedChats error: %v", err)
	}
	if len(chats) != 1 || gotAuth != "Bearer tok" {
		t.Fatalf("unexpected chats %+v with auth %q", chats, gotAuth)
	}

	if err := api.MarkRead(ctx, "m1"); err != nil {
		t.Fatalf("MarkRead error: %v", err)
	}

	_, err = api.GetChat(ctx, "missing")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound || httpErr.Message != "chat not found" {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func TestWebsocketURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3000":   "ws://localhost:3000/api/ws",
		"https://chat.example/":   "wss://chat.example/api/ws",
		"ws://already.example:80": "ws://already.example:80/api/ws",
	}
	for in, want := range cases {
		if got := WebsocketURL(in); got != want {
			t.Errorf("WebsocketURL(%q) = %q, want %q", in, got, want)
		}
	}
}
