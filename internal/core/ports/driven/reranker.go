package driven

import (
	"context"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

// Reranker reorders retrieval results. This is an optional service -
// when nil, the retriever applies a stable descending score sort.
// The interface allows a cross-encoder or LLM reranker to be plugged
// in without changing the retrieval contract.
type Reranker interface {
	// Rerank returns the results in a new order. It must not add or
	// drop entries.
	Rerank(ctx context.Context, query string, results []domain.RetrievalResult) ([]domain.RetrievalResult, error)
}
