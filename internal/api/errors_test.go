package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message wins", 400, `{"message":"Email taken","detail":"ignored","error":"ignored"}`, "Email taken"},
		{"detail", 422, `{"detail":"Invalid phone"}`, "Invalid phone"},
		{"title", 404, `{"title":"Not Found","status":404}`, "Not Found"},
		{"error string", 401, `{"error":"token expired"}`, "token expired"},
		{"error object", 401, `{"error":{"message":"bad token"}}`, "bad token"},
		{"errors list of strings", 400, `{"errors":["name is required","phone is required"]}`, "name is required"},
		{"errors list of objects", 400, `{"errors":[{"field":"name","message":"too short"}]}`, "too short"},
		{"blank fields skipped", 400, `{"message":"  ","detail":"real one"}`, "real one"},
		{"plain text body", 502, `upstream timed out`, "upstream timed out"},
		{"html body falls back", 502, `<html><body>Bad Gateway</body></html>`, "Bad Gateway"},
		{"empty body", 500, ``, "Internal Server Error"},
		{"unknown status", 599, ``, "Request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMessage(tt.status, []byte(tt.body)))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Email taken", Message(&Error{Status: 400, Message: "Email taken"}))
	assert.Contains(t, Message(&transportError{err: errors.New("dial tcp: refused")}), "Could not reach the server")
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "", Message(nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(&Error{Status: http.StatusBadGateway}))
	assert.False(t, retryable(&Error{Status: http.StatusBadRequest}))
	assert.True(t, retryable(&transportError{err: errors.New("reset")}))
	assert.False(t, retryable(&transportError{err: context.Canceled}))
	assert.False(t, retryable(errors.New("decode failure")))
}
