package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/codeready-toolchain/council/pkg/models"
)

// FileStore keeps one JSON file per conversation under dir. Writes are
// atomic (temp file + rename) and serialized per conversation ID, so
// concurrent appends to one conversation never lose messages and readers
// never see a torn file.
type FileStore struct {
	dir string

	mu    sync.Mutex             // guards locks
	locks map[string]*sync.Mutex // per-conversation write locks
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens the data directory, creating it if needed, and
// returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "init", Path: dir, Message: "failed to create data directory", Cause: err}
	}
	return &FileStore{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// CreateConversation implements Store. Creating an ID that already exists
// overwrites it (last write wins).
func (s *FileStore) CreateConversation(ctx context.Context, id, userID string) (*models.Conversation, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	conv := models.NewConversation(id, userID)
	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// GetConversation implements Store.
func (s *FileStore) GetConversation(ctx context.Context, id, userID string) (*models.Conversation, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	conv, err := s.read(id)
	if err != nil {
		return nil, err
	}
	if userID != "" && conv.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, id)
	}
	return conv, nil
}

// AppendUserMessage implements Store.
func (s *FileStore) AppendUserMessage(ctx context.Context, id, content string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.update(id, func(conv *models.Conversation) {
		conv.Messages = append(conv.Messages, models.NewUserMessage(content))
	})
}

// AppendAssistantMessage implements Store.
func (s *FileStore) AppendAssistantMessage(ctx context.Context, id string, msg models.Message) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.update(id, func(conv *models.Conversation) {
		conv.Messages = append(conv.Messages, msg)
	})
}

// UpdateTitle implements Store.
func (s *FileStore) UpdateTitle(ctx context.Context, id, title string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.update(id, func(conv *models.Conversation) {
		conv.Title = title
	})
}

// ListByUser implements Store. Unreadable files are skipped so one corrupt
// entry cannot break the whole listing.
func (s *FileStore) ListByUser(ctx context.Context, userID string) ([]models.ConversationMetadata, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, &StorageError{Op: "list", Path: s.dir, Message: "failed to scan data directory", Cause: err}
	}

	out := make([]models.ConversationMetadata, 0, len(paths))
	for _, path := range paths {
		conv, err := readConversationFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable conversation file", "path", path, "error", err)
			continue
		}
		if conv.UserID != userID {
			continue
		}
		out = append(out, conv.Metadata())
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// update loads, mutates, and rewrites one conversation under its write
// lock.
func (s *FileStore) update(id string, mutate func(*models.Conversation)) error {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.read(id)
	if err != nil {
		return err
	}
	mutate(conv)
	return s.write(conv)
}

// lockFor returns the mutex serializing writes to one conversation,
// creating it on first use.
func (s *FileStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) read(id string) (*models.Conversation, error) {
	conv, err := readConversationFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return conv, nil
}

// write atomically replaces the conversation file: encode to a sibling
// temp file, then rename over the destination. Readers observe the old or
// the new content, never a partial write.
func (s *FileStore) write(conv *models.Conversation) error {
	path := s.path(conv.ID)
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return &StorageError{Op: "write", Path: path, Message: "failed to encode conversation", Cause: err}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &StorageError{Op: "write", Path: tmp, Message: "failed to write temp file", Cause: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &StorageError{Op: "write", Path: path, Message: "failed to replace conversation file", Cause: err}
	}
	return nil
}

func readConversationFile(path string) (*models.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: path, Message: "failed to read conversation file", Cause: err}
	}
	var conv models.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, &StorageError{Op: "read", Path: path, Message: "corrupt conversation file", Cause: err}
	}
	return &conv, nil
}

// validateID rejects IDs that are empty, oversized, or could escape the
// data directory.
func validateID(id string) error {
	if id == "" {
		return NewValidationError("conversationId", "must not be empty")
	}
	if len(id) > 255 {
		return NewValidationError("conversationId", "must be at most 255 characters")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return NewValidationError("conversationId", "must not contain path traversal characters")
	}
	return nil
}
