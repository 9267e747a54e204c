package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Retryable reports whether the failure was on the server side.
func (e *Error) Retryable() bool {
	return e.Status >= 500
}

func newError(status int, body []byte) *Error {
	return &Error{Status: status, Message: extractMessage(status, body)}
}

// extractMessage picks the most useful human message out of the error shapes
// the backend and its proxies are known to return.
func extractMessage(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "detail", "title", "error"} {
			if msg := stringField(payload[key]); msg != "" {
				return msg
			}
		}
		if list, ok := payload["errors"].([]any); ok && len(list) > 0 {
			if msg := stringField(list[0]); msg != "" {
				return msg
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}

	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Request failed"
}

// stringField accepts plain strings and nested {"message": "..."} objects.
func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		for _, key := range []string{"message", "msg", "detail"} {
			if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// transportError wraps failures that never produced a response.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "network error: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// Message returns the text to show a user for err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var netErr *transportError
	if errors.As(err, &netErr) {
		return "Could not reach the server. Check your connection and try again."
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}
