package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Turn is one prior exchange entry supplied by the caller.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ConversationRepository interface {
	// Append adds messages to the session history in order
	Append(ctx context.Context, conversationID string, messages ...*schema.Message) error

	// LoadHistory retrieves the session history
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// ClearHistory removes the session history
	ClearHistory(ctx context.Context, conversationID string) error

	// GetMessageCount returns the number of stored messages
	GetMessageCount(ctx context.Context, conversationID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}
