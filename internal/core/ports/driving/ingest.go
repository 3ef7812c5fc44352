package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

// IngestService processes single files into the document store and
// vector index.
type IngestService interface {
	// Process extracts, normalises, deduplicates, chunks, embeds and
	// indexes one file. Duplicate content is skipped; changed content
	// either updates in place or creates a new version depending on
	// the diff ratio.
	Process(ctx context.Context, path, mimeType string) (*domain.IngestResult, error)

	// ProcessWithTimeout is Process bounded by a deadline. When the
	// bound is exceeded the error wraps domain.ErrExtractionTimeout.
	ProcessWithTimeout(ctx context.Context, path, mimeType string, timeout time.Duration) (*domain.IngestResult, error)

	// KnowledgeBaseID returns the knowledge base this service ingests
	// into. Consumers that read back what they ingest must use the same
	// knowledge base.
	KnowledgeBaseID() string
}

// BatchService processes groups of files with bounded concurrency.
type BatchService interface {
	// Run processes the files under the given task ID and blocks until
	// the batch reaches a terminal status. One file's failure never
	// aborts the batch. The returned task is the final report.
	Run(ctx context.Context, taskID string, paths []string) (*domain.IngestionTask, error)

	// Status returns a snapshot of a task's progress. It is safe to
	// call while the batch is running.
	Status(taskID string) (*domain.IngestionTask, error)
}
