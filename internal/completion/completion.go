// Package completion talks to an OpenAI-compatible chat-completions API.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const SystemPrompt = "You are a friendly customer support assistant for an online service. " +
	"Answer questions clearly and briefly. Never invent account details, order numbers, prices or policies you were not told about. " +
	"If you are unsure, or the customer needs something you cannot do, offer to connect them with a human agent."

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer turns an ordered conversation into the next assistant reply.
type Completer interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// Error is returned for every failed completion call.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion: %s: %v", e.Message, e.Err)
	}
	return "completion: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Options struct {
	URL         string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

type Client struct {
	opts Options
	http *http.Client
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 512
	}
	return &Client{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout},
	}
}

type chatRequest struct {
	Model       string  `json:"model"`
	Messages    []Turn  `json:"messages"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, turns []Turn) (string, error) {
	if c.opts.APIKey == "" {
		return "", &Error{Message: "api key not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	messages := make([]Turn, 0, len(turns)+1)
	messages = append(messages, Turn{Role: RoleSystem, Content: SystemPrompt})
	messages = append(messages, turns...)

	body, err := json.Marshal(chatRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return "", &Error{Message: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &Error{Message: "send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &Error{StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &Error{StatusCode: resp.StatusCode, Message: "no choices in response"}
	}

	reply := strings.TrimSpace(out.Choices[0].Message.Content)
	if reply == "" {
		return "", &Error{StatusCode: resp.StatusCode, Message: "empty reply"}
	}
	return reply, nil
}
