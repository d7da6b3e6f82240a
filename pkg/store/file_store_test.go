package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/codeready-toolchain/council/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFileStoreCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateConversation(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", created.ID)
	assert.Equal(t, "user-1", created.UserID)
	assert.Equal(t, models.DefaultTitle, created.Title)
	assert.Empty(t, created.Messages)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetConversation(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.UserID, got.UserID)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	// One pretty-printed JSON file per conversation.
	data, err := os.ReadFile(filepath.Join(s.dir, "conv-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"id\": \"conv-1\"")
}

func TestFileStoreCreateOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateConversation(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	require.NoError(t, s.AppendUserMessage(ctx, "conv-1", "hello"))

	// Creating the same ID again resets the conversation.
	_, err = s.CreateConversation(ctx, "conv-1", "user-2")
	require.NoError(t, err)

	got, err := s.GetConversation(ctx, "conv-1", "")
	require.NoError(t, err)
	assert.Equal(t, "user-2", got.UserID)
	assert.Empty(t, got.Messages)
}

func TestFileStoreGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetConversation(context.Background(), "ghost", "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "ghost")
}

func TestFileStoreOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateConversation(ctx, "conv-1", "user-1")
	require.NoError(t, err)

	_, err = s.GetConversation(ctx, "conv-1", "user-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)

	// Empty user skips the ownership check for internal callers.
	got, err := s.GetConversation(ctx, "conv-1", "")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
}

func TestFileStoreAppendsPreserveOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateConversation(ctx, "conv-1", "user-1")
	require.NoError(t, err)

	require.NoError(t, s.AppendUserMessage(ctx, "conv-1", "first question"))
	answer := "the answer"
	require.NoError(t, s.AppendAssistantMessage(ctx, "conv-1", models.NewAssistantMessage(
		[]models.Stage1Response{{Model: "model-a", Response: &answer}},
		nil,
		&models.Stage3Synthesis{Model: "chairman", Response: "final"},
	)))
	require.NoError(t, s.AppendUserMessage(ctx, "conv-1", "second question"))

	got, err := s.GetConversation(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, models.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "first question", got.Messages[0].Content)
	assert.Equal(t, models.RoleAssistant, got.Messages[1].Role)
	require.NotNil(t, got.Messages[1].Stage3)
	assert.Equal(t, "final", got.Messages[1].Stage3.Response)
	assert.Equal(t, "second question", got.Messages[2].Content)
}

func TestFileStoreAppendToMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.AppendUserMessage(context.Background(), "ghost", "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.AppendAssistantMessage(context.Background(), "ghost", models.NewAssistantMessage(nil, nil, nil))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreUpdateTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateConversation(ctx, "conv-1", "user-1")
	require.NoError(t, err)

	require.NoError(t, s.UpdateTitle(ctx, "conv-1", "Council Talks Databases"))

	got, err := s.GetConversation(ctx, "conv-1", "")
	require.NoError(t, err)
	assert.Equal(t, "Council Talks Databases", got.Title)

	assert.ErrorIs(t, s.UpdateTitle(ctx, "ghost", "x"), ErrNotFound)
}

// writeConversationFile plants a raw conversation file, bypassing the
// store, to control createdAt exactly.
func writeConversationFile(t *testing.T, dir, id, userID, createdAt string, messageCount int) {
	t.Helper()
	messages := make([]string, 0, messageCount)
	for i := 0; i < messageCount; i++ {
		messages = append(messages, fmt.Sprintf(`{"role":"user","content":"m%d"}`, i))
	}
	content := fmt.Sprintf(`{
  "id": %q,
  "userId": %q,
  "createdAt": %q,
  "title": "New Conversation",
  "messages": [%s]
}`, id, userID, createdAt, strings.Join(messages, ","))
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), []byte(content), 0o644))
}

func TestFileStoreListByUser(t *testing.T) {
	s := newTestStore(t)

	writeConversationFile(t, s.dir, "conv-old", "user-1", "2026-08-18T10:00:00Z", 2)
	writeConversationFile(t, s.dir, "conv-new", "user-1", "2026-08-20T10:00:00Z", 0)
	writeConversationFile(t, s.dir, "conv-other", "user-2", "2026-08-19T10:00:00Z", 1)

	got, err := s.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first, other users filtered out.
	assert.Equal(t, "conv-new", got[0].ID)
	assert.Equal(t, "conv-old", got[1].ID)
	assert.Equal(t, 2, got[1].MessageCount)
}

func TestFileStoreListByUserTieBreaksOnID(t *testing.T) {
	s := newTestStore(t)

	createdAt := "2026-08-20T10:00:00Z"
	writeConversationFile(t, s.dir, "conv-b", "user-1", createdAt, 0)
	writeConversationFile(t, s.dir, "conv-a", "user-1", createdAt, 0)

	got, err := s.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "conv-a", got[0].ID)
	assert.Equal(t, "conv-b", got[1].ID)
}

func TestFileStoreListByUserSkipsCorruptFiles(t *testing.T) {
	s := newTestStore(t)

	writeConversationFile(t, s.dir, "conv-good", "user-1", "2026-08-20T10:00:00Z", 0)
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "broken.json"), []byte("{not json"), 0o644))

	got, err := s.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "conv-good", got[0].ID)
}

func TestFileStoreListByUserEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStoreValidateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
	}{
		{name: "empty", id: ""},
		{name: "too long", id: strings.Repeat("a", 256)},
		{name: "slash", id: "a/b"},
		{name: "backslash", id: `a\b`},
		{name: "dotdot", id: "../escape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateConversation(ctx, tt.id, "user-1")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "conversationId", verr.Field)

			_, err = s.GetConversation(ctx, tt.id, "user-1")
			assert.ErrorAs(t, err, &verr)

			err = s.AppendUserMessage(ctx, tt.id, "x")
			assert.ErrorAs(t, err, &verr)

			err = s.UpdateTitle(ctx, tt.id, "x")
			assert.ErrorAs(t, err, &verr)
		})
	}

	// UUID-shaped and plain IDs pass.
	_, err := s.CreateConversation(ctx, "550e8400-e29b-41d4-a716-446655440000", "user-1")
	assert.NoError(t, err)
}

func TestFileStoreConcurrentAppends(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateConversation(ctx, "conv-1", "user-1")
	require.NoError(t, err)

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, s.AppendUserMessage(ctx, "conv-1", fmt.Sprintf("message %d", n)))
		}(i)
	}
	wg.Wait()

	got, err := s.GetConversation(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, writers)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateConversation(ctx, "conv-1", "user-1")
	require.NoError(t, err)
	require.NoError(t, s.AppendUserMessage(ctx, "conv-1", "hello"))

	leftovers, err := filepath.Glob(filepath.Join(s.dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestNewFileStoreBadDirectory(t *testing.T) {
	// A file where the directory should be makes creation fail.
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewFileStore(filepath.Join(blocker, "sub"))
	require.Error(t, err)

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "init", serr.Op)
}
