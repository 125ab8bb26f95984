package chat

import (
	"time"

	"support-chat-backend/internal/escalation"
)

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeNotFound     ErrorCode = "not_found"
	ErrorCodeConflict     ErrorCode = "conflict"
	ErrorCodeStore        ErrorCode = "store_error"
	ErrorCodeInternal     ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Canned messages posted by the "ai" author.
const (
	WelcomeMessage   = "Hi there! I'm the virtual assistant for our support team. Ask me anything, or say you'd like to talk to a human at any time."
	EscalationNotice = "I've asked a member of our support team to join. Someone will be with you shortly."
	ApologyMessage   = "Sorry, I'm having trouble answering right now. Would you like me to connect you with a human agent?"

	welcomePrefix      = "Hi there! I'm the virtual assistant"
	announcementFormat = "%s has joined the chat and will assist you."
)

type Options struct {
	// FollowUpDelay postpones welcome, announcement and reply messages for
	// deployments whose change feed lags behind the store.
	FollowUpDelay time.Duration
	// AssignOnlyIfUnclaimed refuses to move a chat from one named staff
	// member to another.
	AssignOnlyIfUnclaimed bool
	CompletionTimeout     time.Duration
	Detector              escalation.Detector
}
