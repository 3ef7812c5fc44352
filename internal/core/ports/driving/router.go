package driving

import (
	"context"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

// ComposeRequest is the query-time entry point input.
type ComposeRequest struct {
	// Query is the raw user query.
	Query string

	// ConversationID selects the history to draw from, empty for none.
	ConversationID string

	// Weights is the persona's source weighting configuration.
	Weights domain.RoutingWeights

	// KnowledgeBaseID optionally scopes retrieval to one knowledge base.
	KnowledgeBaseID string

	// MaxHistoryTokens bounds the conversation portion of the context.
	MaxHistoryTokens int
}

// ComposeResult is the composed context plus bookkeeping.
type ComposeResult struct {
	// Context is the composed textual context. Empty when no source
	// contributed; the caller falls back to the role prompt alone.
	Context string

	// SourcesUsed lists the sources that actually contributed, in
	// composition order.
	SourcesUsed []string

	// Analysis is the query classification that drove the weighting.
	Analysis domain.QueryAnalysis
}

// RouterService composes a bounded context from weighted sources.
type RouterService interface {
	// Compose classifies the query, adjusts the persona weights, fetches
	// content from each weighted source, and concatenates the results in
	// descending weight order. A source failing or timing out contributes
	// nothing; it is never a Compose-level failure.
	Compose(ctx context.Context, req ComposeRequest) (*ComposeResult, error)
}

// ConversationContext derives a bounded, relevance-filtered view of
// conversation history for a query.
type ConversationContext interface {
	// Context returns the accepted messages in chronological order.
	// Missing history yields an empty slice, not an error.
	Context(ctx context.Context, conversationID, query string, maxTokens int) ([]domain.Message, error)

	// SetWindow updates the history window size. Sizes outside [1, 20]
	// are rejected with domain.ErrInvalidInput and leave the window
	// unchanged.
	SetWindow(size int) error

	// Window returns the current window size.
	Window() int
}
