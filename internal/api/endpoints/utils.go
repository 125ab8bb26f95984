package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"support-chat-backend/internal/api"
	"support-chat-backend/internal/service/auth"
	"support-chat-backend/internal/service/chat"
)

type HTTPError = api.HTTPError

const maxBodyBytes = 64 << 10

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	return api.WriteJSON(w, status, v)
}

func MethodHandler(
	w http.ResponseWriter,
	r *http.Request,
	allowed map[string]func(http.ResponseWriter, *http.Request) error,
) error {
	if handler, ok := allowed[r.Method]; ok {
		return handler(w, r)
	}
	return &HTTPError{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    "Method not allowed.",
		ErrorLog:   fmt.Errorf("method not allowed: %s", r.Method),
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &HTTPError{StatusCode: http.StatusBadRequest, Message: "Request body is required", ErrorLog: err}
		}
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode %s %s: %w", r.Method, r.URL.Path, err),
		}
	}
	return nil
}

// serviceError translates chat and auth service errors into HTTP responses.
func serviceError(err error) error {
	if err == nil {
		return nil
	}

	var chatErr *chat.Error
	if errors.As(err, &chatErr) {
		return toHTTPError(string(chatErr.Code), chatErr.Message, chatErr.Err)
	}
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return toHTTPError(string(authErr.Code), authErr.Message, authErr.Err)
	}

	return &HTTPError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
		ErrorLog:   err,
	}
}

func toHTTPError(code, message string, cause error) *HTTPError {
	logErr := errors.New(message)
	if cause != nil {
		logErr = fmt.Errorf("%s: %w", message, cause)
	}

	status, ok := statusByCode[code]
	if !ok {
		return &HTTPError{StatusCode: http.StatusInternalServerError, Code: string(chat.ErrorCodeInternal), Message: "Internal server error", ErrorLog: logErr}
	}
	return &HTTPError{StatusCode: status, Code: code, Message: message, ErrorLog: logErr}
}

// Both services share the same code strings.
var statusByCode = map[string]int{
	string(chat.ErrorCodeValidation):   http.StatusBadRequest,
	string(chat.ErrorCodeUnauthorized): http.StatusUnauthorized,
	string(chat.ErrorCodeNotFound):     http.StatusNotFound,
	string(chat.ErrorCodeConflict):     http.StatusConflict,
	string(chat.ErrorCodeStore):        http.StatusBadGateway,
}
