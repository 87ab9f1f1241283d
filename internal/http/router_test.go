package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/bookshelf/internal/config"
)

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t, config.AuthModeLocal)

	w := s.do(http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = s.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_SecurityHeaders(t *testing.T) {
	s := newTestServer(t, config.AuthModeLocal)

	w := s.do(http.MethodGet, "/ping", nil, "")

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRouter_OptionalRoutesAreOff(t *testing.T) {
	s := newTestServer(t, config.AuthModeNone)

	w := s.do(http.MethodPost, "/books/1/enrich", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/tasks/abc", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
