package auth

import (
	internaljwt "support-chat-backend/internal/jwt"
	"support-chat-backend/internal/model"
)

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
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

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	User   model.StaffUserItem
	Tokens internaljwt.TokenResponse
}
