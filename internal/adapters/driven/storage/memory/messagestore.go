package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
)

// Ensure MessageStore implements the interface.
var _ driven.MessageStore = (*MessageStore)(nil)

// MessageStore is an in-memory implementation of driven.MessageStore.
// Append is provided for tests and local use; the context manager
// itself only reads.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[string][]domain.Message
}

// NewMessageStore creates a new in-memory message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[string][]domain.Message)}
}

// Append adds a message to a conversation.
func (s *MessageStore) Append(_ context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	return nil
}

// GetRecentMessages returns up to limit messages, newest first.
// An unknown conversation returns an empty slice.
func (s *MessageStore) GetRecentMessages(_ context.Context, conversationID string, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.messages[conversationID]
	out := make([]domain.Message, len(all))
	copy(out, all)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
