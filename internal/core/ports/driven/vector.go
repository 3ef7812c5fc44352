package driven

import "context"

// IndexHit is one raw nearest-neighbour result from the vector index.
type IndexHit struct {
	// ID is the chunk the vector belongs to.
	ID string

	// Metadata is the metadata recorded alongside the vector.
	Metadata map[string]string

	// Distance is the L2 distance to the query, smaller is closer.
	Distance float64

	// Similarity is 1/(1+Distance), in (0, 1].
	Similarity float64
}

// VectorIndex stores chunk vectors and supports nearest-neighbour search.
// Concurrent Search calls are safe; Add and Delete must be serialised by
// the implementation (single-writer discipline). Delete on a flat index
// rebuilds the whole structure, so callers must expect O(n) latency.
type VectorIndex interface {
	// Add appends vectors with their IDs and metadata. Every vector must
	// match the configured dimension; a mismatch aborts the whole call
	// with domain.ErrDimensionMismatch and no partial append.
	Add(ctx context.Context, ids []string, vectors [][]float32, metadata []map[string]string) error

	// Search returns up to k hits ordered by ascending distance.
	Search(ctx context.Context, query []float32, k int) ([]IndexHit, error)

	// Delete logically removes an entry by ID. Unknown IDs are a no-op.
	Delete(ctx context.Context, id string) error

	// Save persists the index and its ID mapping as a named snapshot
	// pair of files.
	Save(name string) error

	// Load restores a named snapshot. A missing file pair leaves the
	// index empty and returns nil.
	Load(name string) error

	// Dimension returns the configured vector dimension.
	Dimension() int

	// Len returns the number of live entries.
	Len() int
}
