package driven

import (
	"context"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

// MessageStore provides read access to persisted conversation history.
// The context manager only reads; history is append-only and owned by
// the chat layer.
type MessageStore interface {
	// GetRecentMessages returns up to limit messages for a conversation,
	// newest first. An unknown conversation returns an empty slice,
	// not an error.
	GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
}
