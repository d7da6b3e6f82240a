// Package store persists conversations. The production implementation
// keeps one JSON file per conversation under a data directory; the Store
// interface is the seam handlers and services depend on, so tests swap in
// fakes freely.
package store

import (
	"context"

	"github.com/codeready-toolchain/council/pkg/models"
)

// Store is the conversation persistence contract.
//
// GetConversation enforces ownership when userID is non-empty; internal
// callers that already authorized the access pass "". Append operations
// are keyed by conversation ID alone and serialized per ID by the
// implementation.
type Store interface {
	// CreateConversation creates an empty conversation owned by userID.
	// An existing conversation with the same ID is overwritten.
	CreateConversation(ctx context.Context, id, userID string) (*models.Conversation, error)

	// GetConversation loads a conversation. Returns ErrNotFound when no
	// such conversation exists and ErrForbidden when userID is non-empty
	// and does not own it.
	GetConversation(ctx context.Context, id, userID string) (*models.Conversation, error)

	// AppendUserMessage appends a user message to the conversation.
	AppendUserMessage(ctx context.Context, id, content string) error

	// AppendAssistantMessage appends a completed assistant message.
	AppendAssistantMessage(ctx context.Context, id string, msg models.Message) error

	// UpdateTitle replaces the conversation title.
	UpdateTitle(ctx context.Context, id, title string) error

	// ListByUser returns metadata for every conversation owned by userID,
	// newest first.
	ListByUser(ctx context.Context, userID string) ([]models.ConversationMetadata, error)
}
