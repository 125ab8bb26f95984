package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"support-chat-backend/internal/dto"
	"support-chat-backend/internal/model"
)

// HTTPError is a non-2xx answer from the server.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// HTTPAPI talks to the JSON command surface under BaseURL + "/api".
type HTTPAPI struct {
	baseURL string
	client  *http.Client
	token   string
}

func NewHTTPAPI(baseURL string, client *http.Client) *HTTPAPI {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPAPI{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// SetToken attaches a staff bearer token to later requests.
func (a *HTTPAPI) SetToken(token string) {
	a.token = token
}

func (a *HTTPAPI) Join(ctx context.Context, username string) (model.CustomerItem, error) {
	var out model.CustomerItem
	err := a.do(ctx, http.MethodPost, "/users", dto.JoinRequest{Username: username}, &out)
	return out, err
}

func (a *HTTPAPI) Login(ctx context.Context, email, password string) (dto.StaffLoginResponse, error) {
	var out dto.StaffLoginResponse
	if err := a.do(ctx, http.MethodPost, "/staff/login", dto.StaffLoginRequest{Email: email, Password: password}, &out); err != nil {
		return dto.StaffLoginResponse{}, err
	}
	a.token = out.Token
	return out, nil
}

func (a *HTTPAPI) CreateChat(ctx context.Context, author string) (model.ChatItem, error) {
	var out model.ChatItem
	err := a.do(ctx, http.MethodPost, "/chats", dto.CreateChatRequest{Author: author}, &out)
	return out, err
}

func (a *HTTPAPI) GetChat(ctx context.Context, id string) (model.ChatItem, error) {
	var out model.ChatItem
	err := a.do(ctx, http.MethodGet, "/chats/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (a *HTTPAPI) ListChats(ctx context.Context) ([]model.ChatItem, error) {
	var out []model.ChatItem
	err := a.do(ctx, http.MethodGet, "/chats", nil, &out)
	return out, err
}

func (a *HTTPAPI) ListEscalatedChats(ctx context.Context) ([]model.ChatItem, error) {
	var out []model.ChatItem
	err := a.do(ctx, http.MethodGet, "/chats/escalated", nil, &out)
	return out, err
}

func (a *HTTPAPI) AssignStaff(ctx context.Context, chatID, staffName string) (model.ChatItem, error) {
	var out model.ChatItem
	err := a.do(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/assign", dto.AssignStaffRequest{StaffName: staffName}, &out)
	return out, err
}

func (a *HTTPAPI) ListMessages(ctx context.Context, chatID string) ([]model.MessageItem, error) {
	var out []model.MessageItem
	err := a.do(ctx, http.MethodGet, "/messages/"+url.PathEscape(chatID), nil, &out)
	return out, err
}

func (a *HTTPAPI) SendMessage(ctx context.Context, chatID, author, text string) (model.MessageItem, error) {
	var out model.MessageItem
	err := a.do(ctx, http.MethodPost, "/messages", dto.CreateMessageRequest{
		ChatParentID: chatID,
		Author:       author,
		Message:      text,
	}, &out)
	return out, err
}

func (a *HTTPAPI) MarkRead(ctx context.Context, messageID string) error {
	return a.do(ctx, http.MethodPatch, "/messages/"+url.PathEscape(messageID)+"/read", nil, nil)
}

func (a *HTTPAPI) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+"/api"+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
