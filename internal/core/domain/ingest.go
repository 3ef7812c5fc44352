package domain

import "time"

// TaskStatus is the lifecycle state of a batch ingestion task.
type TaskStatus string

const (
	// TaskProcessing means the batch is still running.
	TaskProcessing TaskStatus = "processing"

	// TaskCompleted means the batch finished with at least one success.
	TaskCompleted TaskStatus = "completed"

	// TaskFailed means every file in the batch failed.
	TaskFailed TaskStatus = "failed"
)

// VersionInfo records the outcome of change detection for an ingested file.
type VersionInfo struct {
	// IsNewVersion is true when a new document version was created.
	IsNewVersion bool

	// PreviousID is the document the new version replaced, if any.
	PreviousID string

	// DiffRatio is the line-level similarity to the previous content,
	// in [0, 1]. 1.0 means identical.
	DiffRatio float64
}

// IngestResult is the outcome of processing a single file.
type IngestResult struct {
	// DocumentID is the created or updated document, empty on failure.
	DocumentID string

	// Duplicate is true when the content hash matched an existing
	// document and ingestion was skipped.
	Duplicate bool

	// Version records change-detection details when a prior version
	// of the document existed.
	Version *VersionInfo

	// Chunks is the number of chunks indexed.
	Chunks int

	// Content is the extracted text of the document.
	Content string

	// ProcessedContent is the normalised text used for hashing,
	// change detection and chunking.
	ProcessedContent string

	// Metadata is the document metadata captured at extraction.
	Metadata map[string]any
}

// FileResult is one file's entry in a batch report.
type FileResult struct {
	// Path is the ingested file path.
	Path string

	// Result is the ingestion outcome when successful.
	Result *IngestResult

	// Err is the failure message, empty on success.
	Err string

	// Duration is how long the file took end to end.
	Duration time.Duration
}

// IngestionTask is the transient progress record for a batch.
type IngestionTask struct {
	// TaskID identifies the batch.
	TaskID string

	// Total is the number of files submitted.
	Total int

	// Processed counts files that have finished, success or failure.
	Processed int

	// Succeeded counts successful files.
	Succeeded int

	// Failed counts failed files.
	Failed int

	// Results holds per-file outcomes, one entry per submitted file.
	Results []FileResult

	// Status is the task's lifecycle state.
	Status TaskStatus

	// StartedAt is when the batch began.
	StartedAt time.Time

	// FinishedAt is when the batch reached a terminal status.
	FinishedAt time.Time
}
