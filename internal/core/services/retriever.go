package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
	"github.com/custodia-labs/contexa/internal/core/ports/driving"
	"github.com/custodia-labs/contexa/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// DefaultTopK is the result count when options leave TopK unset.
const DefaultTopK = 5

// DefaultScoreThreshold discards weak matches when options leave the
// threshold unset.
const DefaultScoreThreshold = 0.3

// retrievalHistoryLimit bounds the diagnostics ring.
const retrievalHistoryLimit = 1000

// Retriever wraps the vector index with threshold filtering, metadata
// filters and optional re-ranking.
type Retriever struct {
	vectorIndex driven.VectorIndex
	embeddings  driven.EmbeddingService
	docStore    driven.DocumentStore
	reranker    driven.Reranker

	histMu  sync.Mutex
	history []driving.RetrievalRecord
}

// NewRetriever creates a retrieval service. The reranker is optional;
// when nil, results are stable-sorted by descending similarity.
func NewRetriever(
	vectorIndex driven.VectorIndex,
	embeddings driven.EmbeddingService,
	docStore driven.DocumentStore,
	reranker driven.Reranker,
) *Retriever {
	return &Retriever{
		vectorIndex: vectorIndex,
		embeddings:  embeddings,
		docStore:    docStore,
		reranker:    reranker,
	}
}

// Retrieve returns scored chunks for the query, threshold-filtered and
// truncated to top-k.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) ([]domain.RetrievalResult, error) {
	topK := effectiveTopK(opts)
	return r.retrieve(ctx, query, topK, topK, opts)
}

// RetrieveWithRerank fetches rerankSize candidates before filtering so
// metadata filters don't starve the result set, then applies the same
// threshold and truncates to top-k.
func (r *Retriever) RetrieveWithRerank(ctx context.Context, query string, rerankSize int, opts domain.RetrievalOptions) ([]domain.RetrievalResult, error) {
	topK := effectiveTopK(opts)
	if rerankSize < topK {
		rerankSize = topK
	}
	return r.retrieve(ctx, query, rerankSize, topK, opts)
}

// History returns a copy of the recent retrieval records, newest last.
func (r *Retriever) History() []driving.RetrievalRecord {
	r.histMu.Lock()
	defer r.histMu.Unlock()
	out := make([]driving.RetrievalRecord, len(r.history))
	copy(out, r.history)
	return out
}

func (r *Retriever) retrieve(ctx context.Context, query string, fetchK, topK int, opts domain.RetrievalOptions) ([]domain.RetrievalResult, error) {
	if r.vectorIndex == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if r.embeddings == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Debug("Retrieve: query=%q, fetch=%d, topK=%d, filters=%v", query, fetchK, topK, opts.Filters)

	embedding, err := r.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.vectorIndex.Search(ctx, embedding, fetchK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Retrieve: %d raw hits", len(hits))

	threshold := opts.ScoreThreshold
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}

	results := make([]domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity < threshold {
			continue
		}
		if !matchesFilters(hit.Metadata, opts.Filters) {
			continue
		}

		result := domain.RetrievalResult{
			ChunkID:    hit.ID,
			DocumentID: hit.Metadata["document_id"],
			Similarity: hit.Similarity,
			Metadata:   hit.Metadata,
		}
		if err := r.hydrate(ctx, &result); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Chunk was deleted since indexing, skip it.
				continue
			}
			return nil, err
		}
		results = append(results, result)
	}

	results, err = r.rank(ctx, query, results)
	if err != nil {
		return nil, err
	}

	if topK < len(results) {
		results = results[:topK]
	}

	r.record(query, results)
	logger.Debug("Retrieve: %d results after filtering", len(results))
	return results, nil
}

// rank applies the pluggable reranker, falling back to a stable
// descending score sort.
func (r *Retriever) rank(ctx context.Context, query string, results []domain.RetrievalResult) ([]domain.RetrievalResult, error) {
	if r.reranker != nil {
		reranked, err := r.reranker.Rerank(ctx, query, results)
		if err != nil {
			return nil, fmt.Errorf("rerank: %w", err)
		}
		return reranked, nil
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results, nil
}

func (r *Retriever) hydrate(ctx context.Context, result *domain.RetrievalResult) error {
	if r.docStore == nil {
		return nil
	}
	chunk, err := r.docStore.GetChunk(ctx, result.ChunkID)
	if err != nil {
		return err
	}
	result.Content = chunk.Content
	if result.DocumentID == "" {
		result.DocumentID = chunk.DocumentID
	}
	return nil
}

func (r *Retriever) record(query string, results []domain.RetrievalResult) {
	rec := driving.RetrievalRecord{
		Query:   query,
		Results: len(results),
		At:      time.Now(),
	}
	if len(results) > 0 {
		rec.TopSimilarity = results[0].Similarity
	}

	r.histMu.Lock()
	defer r.histMu.Unlock()
	r.history = append(r.history, rec)
	if len(r.history) > retrievalHistoryLimit {
		r.history = r.history[len(r.history)-retrievalHistoryLimit:]
	}
}

func effectiveTopK(opts domain.RetrievalOptions) int {
	if opts.TopK > 0 {
		return opts.TopK
	}
	return DefaultTopK
}

// matchesFilters is an exact-match conjunction over metadata.
func matchesFilters(metadata map[string]string, filters map[string]string) bool {
	for k, want := range filters {
		if metadata[k] != want {
			return false
		}
	}
	return true
}
