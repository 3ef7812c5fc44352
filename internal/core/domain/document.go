package domain

import "time"

// EmbeddingStatus tracks a document's progress through the indexing pipeline.
type EmbeddingStatus string

const (
	// EmbeddingPending means the document has not been chunked or embedded yet.
	EmbeddingPending EmbeddingStatus = "pending"

	// EmbeddingProcessing means chunking and embedding are in progress.
	EmbeddingProcessing EmbeddingStatus = "processing"

	// EmbeddingCompleted means all chunks are embedded and indexed.
	EmbeddingCompleted EmbeddingStatus = "completed"

	// EmbeddingFailed means embedding or indexing failed.
	EmbeddingFailed EmbeddingStatus = "failed"
)

// Document represents a logical unit of knowledge after extraction.
// It is the canonical representation before chunking.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// KnowledgeBaseID links to the owning knowledge base.
	KnowledgeBaseID string

	// FolderID optionally groups documents within a knowledge base.
	FolderID string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the raw extracted text.
	Content string

	// ProcessedContent is the normalised text used for hashing and chunking.
	ProcessedContent string

	// ContentHash is the SHA-256 digest of ProcessedContent,
	// used for duplicate and change detection.
	ContentHash string

	// FileType is the declared MIME type of the source file.
	FileType string

	// ParentID links a new version back to the document it replaced.
	ParentID string

	// Version is 1 for the original, incremented for each new version.
	Version int

	// Status tracks the embedding pipeline state.
	Status EmbeddingStatus

	// Metadata contains arbitrary key-value pairs from extraction.
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Documents are split into chunks for granular retrieval.
// Chunks are immutable once created.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic retrieval.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// KnowledgeBase is a named grouping of documents.
type KnowledgeBase struct {
	// ID is the unique identifier.
	ID string

	// Name is the human-readable name.
	Name string

	// Enabled gates whether the knowledge base participates in retrieval.
	Enabled bool

	// CreatedAt is when the knowledge base was created.
	CreatedAt time.Time

	// UpdatedAt is when the knowledge base was last modified.
	UpdatedAt time.Time
}
