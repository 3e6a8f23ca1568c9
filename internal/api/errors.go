package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error is returned by every Client call that fails. Status is 0 when no
// response was received.
type Error struct {
	Status  int
	URL     string
	Code    string
	Message string
	Data    json.RawMessage
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "request failed"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.URL, msg)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.URL, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("%s: %d: %s", e.URL, e.Status, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether the backend rejected the credentials
func IsUnauthorized(err error) bool {
	s := StatusOf(err)
	return s == 401 || s == 403
}
