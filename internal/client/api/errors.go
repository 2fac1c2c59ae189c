package api

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyToken    = errors.New("server returned no token")
	ErrEmptyPatch    = errors.New("nothing to update")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	// Message is the server-provided explanation, if any.
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (%d): %s", e.Err, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (%d)", e.Err, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Message returns the server-provided message carried by err, or fallback
// when there is none.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func errorForStatus(code int) error {
	switch {
	case code == 401 || code == 403:
		return ErrUnauthorized
	case code >= 500:
		return ErrUnavailable
	default:
		return ErrRequestFailed
	}
}
