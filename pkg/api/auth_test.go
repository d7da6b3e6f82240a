package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty header", header: "", want: ""},
		{name: "bearer scheme", header: "Bearer tok-123", want: "tok-123"},
		{name: "apikey scheme", header: "ApiKey key-456", want: "key-456"},
		{name: "whitespace around token trimmed", header: "Bearer   tok-123  ", want: "tok-123"},
		{name: "unknown scheme", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "scheme without token", header: "Bearer ", want: ""},
		{name: "scheme is case sensitive", header: "bearer tok-123", want: ""},
		{name: "bare token without scheme", header: "tok-123", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bearerToken(tt.header))
		})
	}
}

func TestDeriveUserID(t *testing.T) {
	assert.Equal(t, "short-token", deriveUserID("short-token"))
	assert.Equal(t, "12345678901234567890", deriveUserID("12345678901234567890-and-more"))
}

func TestAPIRequiresAuthorization(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	rec := doRequest(t, s, http.MethodGet, "/api/conversations", "", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing or invalid Authorization header", errorMessage(t, rec))
}

func TestAcceptsBearerAndApiKeySchemes(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	for _, token := range []string{"Bearer tok-1", "ApiKey tok-1"} {
		rec := doRequest(t, s, http.MethodGet, "/api/conversations", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code, token)
	}
}

func TestIdentityUsesTokenPrefix(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	// Two tokens sharing the first 20 characters resolve to the same
	// identity and therefore see the same conversations.
	id := createConversation(t, s, "Bearer 12345678901234567890-alpha")

	rec := doRequest(t, s, http.MethodGet, "/api/conversations/"+id, "Bearer 12345678901234567890-beta", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthNeedsNoAuthorization(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	rec := doRequest(t, s, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
