package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown file format or extractor type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDimensionMismatch indicates a vector does not match the index
	// dimension. This is a configuration error and the write is aborted.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrFileTooLarge indicates a file exceeds the ingestion size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrExtractionTimeout indicates extraction exceeded the caller's bound.
	ErrExtractionTimeout = errors.New("extraction timed out")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	// Semantic similarity search is disabled.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrSourceUnavailable indicates a weighted context source failed or
	// timed out. The router treats this as zero contribution.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrTaskNotFound indicates an unknown batch task ID.
	ErrTaskNotFound = errors.New("task not found")
)
