package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is matched by a ServerError carrying a 404 status.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedFormat is returned for unknown export formats.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// NetworkError reports a request that never produced a response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError reports a non-2xx response.
type ServerError struct {
	StatusCode int
	// Message is the "message" field of the JSON response body, if any.
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *ServerError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// ServerMessage extracts the server-provided message from err, if any.
func ServerMessage(err error) string {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}
