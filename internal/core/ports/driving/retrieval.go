package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

// RetrievalRecord is one entry in the retrieval diagnostics history.
type RetrievalRecord struct {
	// Query is the retrieval query text.
	Query string

	// Results is the number of results returned after filtering.
	Results int

	// TopSimilarity is the best similarity in the result set, 0 if empty.
	TopSimilarity float64

	// At is when the retrieval ran.
	At time.Time
}

// RetrievalService provides threshold-filtered semantic retrieval.
type RetrievalService interface {
	// Retrieve returns scored chunks for the query, filtered by the
	// options' threshold and metadata filters, truncated to top-k.
	Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) ([]domain.RetrievalResult, error)

	// RetrieveWithRerank fetches rerankSize candidates before filtering,
	// then applies the threshold and truncates to top-k. Used when
	// metadata filters would otherwise discard too many raw hits.
	RetrieveWithRerank(ctx context.Context, query string, rerankSize int, opts domain.RetrievalOptions) ([]domain.RetrievalResult, error)

	// History returns recent retrieval records, newest last.
	History() []RetrievalRecord
}
