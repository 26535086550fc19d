// Package store provides chat history persistence for assistants. The
// chat ID is taken from the chat context carried in the request context.
package store

import (
	"context"
	"time"

	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentdemo", "store")

// MessageStore persists chat message history per chat ID.
type MessageStore interface {
	// Messages returns the history for the chat ID in the context.
	Messages(ctx context.Context) []llms.Message
	// Add appends a message to the history for the chat ID in the context.
	Add(ctx context.Context, msg llms.Message) error
	// Reset deletes the history for the chat ID in the context.
	Reset(ctx context.Context) error
}

// ChatInfo describes a stored chat.
type ChatInfo struct {
	ChatID    string         `json:"chat_id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Messages  []llms.Message `json:"messages,omitempty"`
}

// MessageStoreManager extends MessageStore with chat management.
type MessageStoreManager interface {
	MessageStore

	// UpdateChat creates or updates the chat title and metadata.
	UpdateChat(ctx context.Context, title string, metadata map[string]any) error
	// GetChatInfo returns the chat info with messages.
	GetChatInfo(ctx context.Context, id string) (*ChatInfo, error)
	// GetChatTitle returns the chat title, or empty if not persisted.
	GetChatTitle(ctx context.Context, id string) (string, error)
	// ListChats returns the stored chat IDs.
	ListChats(ctx context.Context) ([]string, error)
	// Cleanup deletes chats not updated for the given duration,
	// returning the number of deleted chats.
	Cleanup(ctx context.Context, olderThan time.Duration) (uint32, error)
}
