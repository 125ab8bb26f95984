package api

// HTTPError is what endpoint handlers return to pick the response status.
// ErrorLog is logged server side and never sent to the caller.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	ErrorLog   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
