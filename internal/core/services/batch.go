package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
	"github.com/custodia-labs/contexa/internal/core/ports/driving"
	"github.com/custodia-labs/contexa/internal/logger"
)

// Ensure Batch implements the interface.
var _ driving.BatchService = (*Batch)(nil)

// Batch pool defaults.
const (
	// DefaultWorkers is the bounded worker count for file processing.
	DefaultWorkers = 5

	// DefaultBatchSize partitions submitted paths into fixed batches.
	DefaultBatchSize = 20
)

// mimeByExtension maps file extensions to declared MIME types for
// batch submissions, where callers hand over bare paths.
var mimeByExtension = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".log":  "text/plain",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// BatchConfig carries the batch processor's tunable settings.
type BatchConfig struct {
	// Workers bounds concurrent file processing.
	Workers int

	// BatchSize partitions the submitted paths.
	BatchSize int

	// FileTimeout bounds each file's end-to-end processing, 0 for none.
	FileTimeout time.Duration

	// SnapshotName, when set, checkpoints the vector index under this
	// name after the batch completes.
	SnapshotName string
}

// Batch processes groups of files with a bounded worker pool. Each
// worker's unit of work is one file end to end; a file's failure is
// recorded in its own result entry and never aborts the batch.
type Batch struct {
	ingestor    driving.IngestService
	vectorIndex driven.VectorIndex
	cfg         BatchConfig

	mu    sync.RWMutex
	tasks map[string]*domain.IngestionTask
}

// NewBatch creates a batch processor. vectorIndex is optional and only
// used for the post-batch snapshot checkpoint.
func NewBatch(ingestor driving.IngestService, vectorIndex driven.VectorIndex, cfg BatchConfig) *Batch {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Batch{
		ingestor:    ingestor,
		vectorIndex: vectorIndex,
		cfg:         cfg,
		tasks:       make(map[string]*domain.IngestionTask),
	}
}

// Run processes the files under the given task ID and blocks until the
// batch reaches a terminal status. Progress is queryable mid-run via
// Status. Cancelling the context stops new files from being submitted;
// in-flight files run to completion.
func (b *Batch) Run(ctx context.Context, taskID string, paths []string) (*domain.IngestionTask, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: empty task ID", domain.ErrInvalidInput)
	}

	task := &domain.IngestionTask{
		TaskID:    taskID,
		Total:     len(paths),
		Results:   make([]domain.FileResult, len(paths)),
		Status:    domain.TaskProcessing,
		StartedAt: time.Now(),
	}
	b.mu.Lock()
	if _, exists := b.tasks[taskID]; exists {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: task %s", domain.ErrAlreadyExists, taskID)
	}
	b.tasks[taskID] = task
	b.mu.Unlock()

	logger.Section("Batch Ingestion")
	logger.Info("Task %s: %d files, %d workers", taskID, len(paths), b.cfg.Workers)

	for start := 0; start < len(paths); start += b.cfg.BatchSize {
		end := start + b.cfg.BatchSize
		if end > len(paths) {
			end = len(paths)
		}
		b.runBatch(ctx, task, paths, start, end)

		if ctx.Err() != nil {
			// Stop submitting new batches; everything already
			// submitted has run to completion.
			b.markSkipped(task, paths, end)
			break
		}
	}

	b.finish(task)

	if b.vectorIndex != nil && b.cfg.SnapshotName != "" {
		if err := b.vectorIndex.Save(b.cfg.SnapshotName); err != nil {
			logger.Warn("Task %s: snapshot checkpoint failed: %v", taskID, err)
		}
	}

	return b.Status(taskID)
}

// Status returns a copy of a task's current progress. Safe to call
// while the batch is running.
func (b *Batch) Status(taskID string) (*domain.IngestionTask, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	task, ok := b.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, taskID)
	}

	snapshot := *task
	snapshot.Results = make([]domain.FileResult, len(task.Results))
	copy(snapshot.Results, task.Results)
	return &snapshot, nil
}

// runBatch processes paths[start:end] with the bounded worker pool.
func (b *Batch) runBatch(ctx context.Context, task *domain.IngestionTask, paths []string, start, end int) {
	g := new(errgroup.Group)
	g.SetLimit(b.cfg.Workers)

	for i := start; i < end; i++ {
		i := i
		g.Go(func() error {
			b.processFile(ctx, task, i, paths[i])
			// Failures are per-file results, never group errors.
			return nil
		})
	}
	// The group never carries an error; Wait is a join point.
	_ = g.Wait()
}

// processFile runs one file end to end and records its outcome.
func (b *Batch) processFile(ctx context.Context, task *domain.IngestionTask, idx int, path string) {
	started := time.Now()

	var result *domain.IngestResult
	var err error
	mimeType := MIMEForPath(path)
	if b.cfg.FileTimeout > 0 {
		result, err = b.ingestor.ProcessWithTimeout(ctx, path, mimeType, b.cfg.FileTimeout)
	} else {
		result, err = b.ingestor.Process(ctx, path, mimeType)
	}

	entry := domain.FileResult{
		Path:     path,
		Duration: time.Since(started),
	}
	if err != nil {
		entry.Err = err.Error()
		logger.Warn("Task %s: %s failed: %v", task.TaskID, filepath.Base(path), err)
	} else {
		entry.Result = result
		logger.Debug("Task %s: %s done in %s", task.TaskID, filepath.Base(path), entry.Duration)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	task.Results[idx] = entry
	task.Processed++
	if err != nil {
		task.Failed++
	} else {
		task.Succeeded++
	}
}

// markSkipped records context-cancellation entries for files that were
// never submitted.
func (b *Batch) markSkipped(task *domain.IngestionTask, paths []string, from int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := from; i < len(paths); i++ {
		task.Results[i] = domain.FileResult{Path: paths[i], Err: context.Canceled.Error()}
		task.Processed++
		task.Failed++
	}
}

func (b *Batch) finish(task *domain.IngestionTask) {
	b.mu.Lock()
	defer b.mu.Unlock()

	task.FinishedAt = time.Now()
	if task.Total > 0 && task.Succeeded == 0 {
		task.Status = domain.TaskFailed
	} else {
		task.Status = domain.TaskCompleted
	}
	logger.Info("Task %s: %d processed, %d succeeded, %d failed",
		task.TaskID, task.Processed, task.Succeeded, task.Failed)
}

// MIMEForPath derives a declared MIME type from the file extension,
// falling back to plain text.
func MIMEForPath(path string) string {
	if mt, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "text/plain"
}
