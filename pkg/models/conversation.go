// Package models defines the conversation schema shared by the store, the
// workflow service, and the HTTP API. Field names match the persisted JSON
// layout exactly; changing a tag is a data-format change.
package models

import "time"

// Conversation is the unit of persistence: one JSON file per conversation.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
}

// DefaultTitle is assigned to fresh conversations until title generation
// replaces it after the first exchange.
const DefaultTitle = "New Conversation"

// NewConversation returns an empty conversation owned by userID.
func NewConversation(id, userID string) *Conversation {
	return &Conversation{
		ID:        id,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		Title:     DefaultTitle,
		Messages:  []Message{},
	}
}

// MessageCount returns the number of messages, used by listings.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// ConversationMetadata is the listing projection of a conversation.
type ConversationMetadata struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	CreatedAt    time.Time `json:"createdAt"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
}

// Metadata projects the conversation for list responses.
func (c *Conversation) Metadata() ConversationMetadata {
	return ConversationMetadata{
		ID:           c.ID,
		UserID:       c.UserID,
		CreatedAt:    c.CreatedAt,
		Title:        c.Title,
		MessageCount: c.MessageCount(),
	}
}
