package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"support-chat-backend/internal/api"
	"support-chat-backend/internal/completion"
	"support-chat-backend/internal/dto"
	internaljwt "support-chat-backend/internal/jwt"
	"support-chat-backend/internal/model"
	"support-chat-backend/internal/queue"
	"support-chat-backend/internal/service/auth"
	"support-chat-backend/internal/service/chat"
	"support-chat-backend/internal/store"
	"support-chat-backend/internal/websocket"

	"github.com/prometheus/client_golang/prometheus"
)

type stubCompleter struct{}

func (stubCompleter) Complete(context.Context, []completion.Turn) (string, error) {
	return "Happy to help.", nil
}

type testServer struct {
	url  string
	chat *chat.Service
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	repo := store.NewMemoryRepository(nil)
	hash, err := internaljwt.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	repo.SeedStaffUser(model.StaffUserItem{Email: "dana@example.com", Name: "Dana", PasswordHash: hash})

	httpQueue := queue.NewRequestQueueManager("http-test", 32, 4)
	engineQueue := queue.NewRequestQueueManager("engine-test", 32, 2)
	t.Cleanup(httpQueue.Shutdown)
	t.Cleanup(engineQueue.Shutdown)

	chatService := chat.New(repo, stubCompleter{}, engineQueue, chat.Options{})
	authService := auth.New(repo, internaljwt.NewIssuer("test-secret", time.Hour, nil))

	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := api.NewAPIServer(
		api.Options{AllowedOrigins: []string{"*"}, Registry: prometheus.NewRegistry()},
		httpQueue,
		chatService,
		authService,
		websocket.NewHandler(hub, []string{"*"}),
		All("/api")...,
	)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(chatService.Wait)
	return testServer{url: ts.URL, chat: chatService}
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func login(t *testing.T, ts testServer) string {
	t.Helper()
	var resp dto.StaffLoginResponse
	status := doJSON(t, http.MethodPost, ts.url+"/api/staff/login", "", dto.StaffLoginRequest{
		Email:    "Dana@Example.com",
		Password: "hunter22",
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("login status %d", status)
	}
	if resp.Token == "" || resp.Staff.Name != "Dana" {
		t.Fatalf("unexpected login response %+v", resp)
	}
	return resp.Token
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	var health map[string]any
	if status := doJSON(t, http.MethodGet, ts.url+"/api/health", "", nil, &health); status != http.StatusOK {
		t.Fatalf("health status %d", status)
	}
	if health["status"] != "ok" {
		t.Fatalf("unexpected health body %v", health)
	}

	resp, err := http.Get(ts.url + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status %d", resp.StatusCode)
	}
}

func TestCustomerJoinAndLookup(t *testing.T) {
	ts := newTestServer(t)

	var created model.CustomerItem
	if status := doJSON(t, http.MethodPost, ts.url+"/api/users", "", dto.JoinRequest{Username: "alice"}, &created); status != http.StatusCreated {
		t.Fatalf("join status %d", status)
	}
	if created.ID == "" || created.Role != model.RoleCustomer {
		t.Fatalf("unexpected customer %+v", created)
	}

	var fetched model.CustomerItem
	if status := doJSON(t, http.MethodGet, ts.url+"/api/users/"+created.ID, "", nil, &fetched); status != http.StatusOK {
		t.Fatalf("get status %d", status)
	}
	if fetched.Username != "alice" {
		t.Fatalf("unexpected username %q", fetched.Username)
	}

	if status := doJSON(t, http.MethodGet, ts.url+"/api/users/missing", "", nil, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", status)
	}
	if status := doJSON(t, http.MethodPost, ts.url+"/api/users", "", dto.JoinRequest{Username: "ai"}, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for reserved username, got %d", status)
	}
}

func TestChatLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var created model.ChatItem
	if status := doJSON(t, http.MethodPost, ts.url+"/api/chats", "", dto.CreateChatRequest{Author: "alice"}, &created); status != http.StatusCreated {
		t.Fatalf("create chat status %d", status)
	}
	if created.AssignedStaff != model.AuthorAI || created.NeedsHuman {
		t.Fatalf("unexpected new chat %+v", created)
	}

	var fetched model.ChatItem
	if status := doJSON(t, http.MethodGet, ts.url+"/api/chats/"+created.ID, "", nil, &fetched); status != http.StatusOK {
		t.Fatalf("get chat status %d", status)
	}
	if fetched.ID != created.ID {
		t.Fatalf("unexpected chat %+v", fetched)
	}

	var sent model.MessageItem
	status := doJSON(t, http.MethodPost, ts.url+"/api/messages", "", dto.CreateMessageRequest{
		ChatParentID: created.ID,
		Author:       "alice",
		Message:      "my order is late",
	}, &sent)
	if status != http.StatusCreated {
		t.Fatalf("post message status %d", status)
	}
	ts.chat.Wait()

	var messages []model.MessageItem
	if status := doJSON(t, http.MethodGet, ts.url+"/api/messages/"+created.ID, "", nil, &messages); status != http.StatusOK {
		t.Fatalf("list messages status %d", status)
	}
	if len(messages) != 3 {
		t.Fatalf("expected welcome, customer message and reply, got %d messages", len(messages))
	}
	if messages[2].Author != model.AuthorAI || messages[2].Message != "Happy to help." {
		t.Fatalf("unexpected reply %+v", messages[2])
	}

	var chats []model.ChatItem
	if status := doJSON(t, http.MethodGet, ts.url+"/api/chats", "", nil, &chats); status != http.StatusOK {
		t.Fatalf("list chats status %d", status)
	}
	if len(chats) != 1 {
		t.Fatalf("expected one chat, got %d", len(chats))
	}
}

func TestMessageValidationAndNotFound(t *testing.T) {
	ts := newTestServer(t)

	status := doJSON(t, http.MethodPost, ts.url+"/api/messages", "", dto.CreateMessageRequest{Author: "alice", Message: "hi"}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 without chatParentID, got %d", status)
	}

	status = doJSON(t, http.MethodPost, ts.url+"/api/messages", "", dto.CreateMessageRequest{ChatParentID: "nope", Author: "alice", Message: "hi"}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown chat, got %d", status)
	}

	if status := doJSON(t, http.MethodGet, ts.url+"/api/chats/nope", "", nil, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown chat, got %d", status)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.url+"/api/chats", bytes.NewBufferString("{not json"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/chats: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestMarkRead(t *testing.T) {
	ts := newTestServer(t)

	var created model.ChatItem
	doJSON(t, http.MethodPost, ts.url+"/api/chats", "", dto.CreateChatRequest{Author: "bob"}, &created)
	ts.chat.Wait()

	var messages []model.MessageItem
	doJSON(t, http.MethodGet, ts.url+"/api/messages/"+created.ID, "", nil, &messages)
	if len(messages) != 1 {
		t.Fatalf("expected the welcome message, got %d", len(messages))
	}

	var read model.MessageItem
	if status := doJSON(t, http.MethodPatch, ts.url+"/api/messages/"+messages[0].ID+"/read", "", nil, &read); status != http.StatusOK {
		t.Fatalf("mark read status %d", status)
	}
	if !read.Read {
		t.Fatal("expected message to be read")
	}

	if status := doJSON(t, http.MethodPatch, ts.url+"/api/messages/"+messages[0].ID+"/read", "", nil, &read); status != http.StatusOK {
		t.Fatalf("second mark read status %d", status)
	}

	if status := doJSON(t, http.MethodPatch, ts.url+"/api/messages/unknown/read", "", nil, nil); status != http.StatusNoContent {
		t.Fatalf("expected 204 for unknown message, got %d", status)
	}
}

func TestStaffRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	if status := doJSON(t, http.MethodGet, ts.url+"/api/chats/escalated", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	if status := doJSON(t, http.MethodGet, ts.url+"/api/chats/escalated", "garbage", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", status)
	}

	status := doJSON(t, http.MethodPost, ts.url+"/api/staff/login", "", dto.StaffLoginRequest{Email: "dana@example.com", Password: "wrong"}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", status)
	}

	token := login(t, ts)

	var me dto.StaffResponse
	if status := doJSON(t, http.MethodGet, ts.url+"/api/staff/me", token, nil, &me); status != http.StatusOK {
		t.Fatalf("me status %d", status)
	}
	if me.Email != "dana@example.com" {
		t.Fatalf("unexpected staff %+v", me)
	}
}

func TestEscalateThenAssign(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts)

	var created model.ChatItem
	doJSON(t, http.MethodPost, ts.url+"/api/chats", "", dto.CreateChatRequest{Author: "carol"}, &created)
	doJSON(t, http.MethodPost, ts.url+"/api/messages", "", dto.CreateMessageRequest{
		ChatParentID: created.ID,
		Author:       "carol",
		Message:      "can I talk to a human please",
	}, nil)
	ts.chat.Wait()

	var escalated []model.ChatItem
	if status := doJSON(t, http.MethodGet, ts.url+"/api/chats/escalated", token, nil, &escalated); status != http.StatusOK {
		t.Fatalf("escalated status %d", status)
	}
	if len(escalated) != 1 || escalated[0].ID != created.ID {
		t.Fatalf("expected the chat to be escalated, got %+v", escalated)
	}

	var assigned model.ChatItem
	if status := doJSON(t, http.MethodPost, ts.url+"/api/chats/"+created.ID+"/assign", token, nil, &assigned); status != http.StatusOK {
		t.Fatalf("assign status %d", status)
	}
	if assigned.AssignedStaff != "Dana" {
		t.Fatalf("expected staff name from token, got %q", assigned.AssignedStaff)
	}

	if status := doJSON(t, http.MethodPost, ts.url+"/api/chats/"+created.ID+"/assign", "", dto.AssignStaffRequest{StaffName: "Eve"}, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 assigning without token, got %d", status)
	}
	ts.chat.Wait()

	var messages []model.MessageItem
	doJSON(t, http.MethodGet, ts.url+"/api/messages/"+created.ID, "", nil, &messages)
	last := messages[len(messages)-1]
	if last.Author != model.AuthorAI || last.Message != "Dana has joined the chat and will assist you." {
		t.Fatalf("expected announcement last, got %+v", last)
	}
}
