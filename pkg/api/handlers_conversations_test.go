package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/council/pkg/models"
)

func TestCreateConversation(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	rec := doRequest(t, s, http.MethodPost, "/api/conversations", tokenAlice, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var conv models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "alice-token", conv.UserID)
	assert.Equal(t, models.DefaultTitle, conv.Title)
	assert.Empty(t, conv.Messages)
	assert.False(t, conv.CreatedAt.IsZero())
}

func TestGetConversation(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	id := createConversation(t, s, tokenAlice)

	rec := doRequest(t, s, http.MethodGet, "/api/conversations/"+id, tokenAlice, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var conv models.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.Equal(t, id, conv.ID)
	assert.Equal(t, "alice-token", conv.UserID)
}

func TestGetConversationNotFound(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	rec := doRequest(t, s, http.MethodGet, "/api/conversations/ghost", tokenAlice, nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "conversation not found", errorMessage(t, rec))
}

func TestGetConversationOwnership(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	id := createConversation(t, s, tokenAlice)

	rec := doRequest(t, s, http.MethodGet, "/api/conversations/"+id, tokenBob, nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "conversation belongs to another user", errorMessage(t, rec))
}

func TestGetConversationRejectsOverlongID(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	rec := doRequest(t, s, http.MethodGet, "/api/conversations/"+strings.Repeat("a", 256), tokenAlice, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "conversationId")
}

func TestListConversationsIsolatedPerUser(t *testing.T) {
	s := newTestServer(t, testServerConfig())
	aliceID := createConversation(t, s, tokenAlice)
	createConversation(t, s, tokenBob)

	rec := doRequest(t, s, http.MethodGet, "/api/conversations", tokenAlice, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.ConversationMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, aliceID, list[0].ID)
	assert.Equal(t, "alice-token", list[0].UserID)
}

func TestListConversationsEmpty(t *testing.T) {
	s := newTestServer(t, testServerConfig())

	rec := doRequest(t, s, http.MethodGet, "/api/conversations", tokenAlice, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
