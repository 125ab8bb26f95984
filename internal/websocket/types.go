package websocket

import "encoding/json"

const (
	TypeChat    = "chat"
	TypeMessage = "message"
	TypeTyping  = "typing"
)

// RecordEvent re-emits a store change to every session.
type RecordEvent struct {
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Record json.RawMessage `json:"record"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	ChatID   string `json:"chatId"`
	Author   string `json:"author"`
	IsTyping bool   `json:"isTyping"`
}

// Envelope is the superset used to decode anything a session sends.
type Envelope struct {
	Type     string          `json:"type"`
	Action   string          `json:"action,omitempty"`
	Record   json.RawMessage `json:"record,omitempty"`
	ChatID   string          `json:"chatId,omitempty"`
	Author   string          `json:"author,omitempty"`
	IsTyping bool            `json:"isTyping,omitempty"`
}
