package plotclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NetworkError is a transport failure: the server could not be reached or
// the response could not be read.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError is a non-2xx response. Message is the body text, or a
// generic message when the body is empty.
type HTTPStatusError struct {
	Status  int
	Message string
}

// newHTTPStatusError trims body so http.Error's trailing newline is not
// shown. A whitespace-only body therefore gets the status fallback.
func newHTTPStatusError(status int, body string) *HTTPStatusError {
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = fmt.Sprintf("HTTP error! status: %d", status)
	}
	return &HTTPStatusError{Status: status, Message: msg}
}

func (e *HTTPStatusError) Error() string { return e.Message }

// DecodeError means a 2xx body was not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "invalid JSON in server response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }
