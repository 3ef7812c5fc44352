package domain

// RetrievalOptions controls a semantic retrieval call.
type RetrievalOptions struct {
	// TopK is the maximum number of results to return.
	TopK int

	// ScoreThreshold discards results whose similarity falls below it.
	ScoreThreshold float64

	// Filters is an exact-match conjunction over chunk metadata,
	// e.g. knowledge base ID or folder ID.
	Filters map[string]string
}

// RetrievalResult is one scored chunk returned from retrieval.
type RetrievalResult struct {
	// DocumentID is the parent document.
	DocumentID string

	// ChunkID is the matched chunk.
	ChunkID string

	// Content is the chunk text.
	Content string

	// Similarity is the score in (0, 1], higher is closer.
	Similarity float64

	// Metadata carries the chunk metadata stored in the index.
	Metadata map[string]string
}
