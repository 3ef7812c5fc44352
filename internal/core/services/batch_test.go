package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

func batchPaths(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("/docs/file-%02d.txt", i)
	}
	return paths
}

func TestBatchRunAllSucceed(t *testing.T) {
	ingest := &mockIngest{}
	batch := NewBatch(ingest, nil, BatchConfig{Workers: 3, BatchSize: 4})

	paths := batchPaths(10)
	task, err := batch.Run(context.Background(), "task-1", paths)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskCompleted, task.Status)
	assert.Equal(t, 10, task.Total)
	assert.Equal(t, 10, task.Processed)
	assert.Equal(t, 10, task.Succeeded)
	assert.Zero(t, task.Failed)
	assert.False(t, task.FinishedAt.IsZero())

	// One result entry per submitted file, in submission order.
	require.Len(t, task.Results, 10)
	for i, r := range task.Results {
		assert.Equal(t, paths[i], r.Path)
		assert.Empty(t, r.Err)
		require.NotNil(t, r.Result)
	}
}

func TestBatchRunPartialFailure(t *testing.T) {
	paths := batchPaths(6)
	ingest := &mockIngest{failOn: map[string]error{
		paths[1]: assert.AnError,
		paths[4]: assert.AnError,
	}}
	batch := NewBatch(ingest, nil, BatchConfig{Workers: 2, BatchSize: 3})

	task, err := batch.Run(context.Background(), "task-1", paths)
	require.NoError(t, err)

	// A failing file never aborts the batch.
	assert.Equal(t, domain.TaskCompleted, task.Status)
	assert.Equal(t, 6, task.Processed)
	assert.Equal(t, 4, task.Succeeded)
	assert.Equal(t, 2, task.Failed)
	assert.Equal(t, task.Processed, task.Succeeded+task.Failed)

	assert.NotEmpty(t, task.Results[1].Err)
	assert.Nil(t, task.Results[1].Result)
	assert.Empty(t, task.Results[0].Err)
}

func TestBatchRunAllFail(t *testing.T) {
	paths := batchPaths(3)
	failures := make(map[string]error, len(paths))
	for _, p := range paths {
		failures[p] = assert.AnError
	}
	batch := NewBatch(&mockIngest{failOn: failures}, nil, BatchConfig{})

	task, err := batch.Run(context.Background(), "task-1", paths)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskFailed, task.Status)
	assert.Equal(t, 3, task.Failed)
}

func TestBatchRunEmpty(t *testing.T) {
	batch := NewBatch(&mockIngest{}, nil, BatchConfig{})

	task, err := batch.Run(context.Background(), "task-1", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, task.Status)
	assert.Zero(t, task.Total)
}

func TestBatchRunRejectsDuplicateTaskID(t *testing.T) {
	batch := NewBatch(&mockIngest{}, nil, BatchConfig{})

	_, err := batch.Run(context.Background(), "task-1", batchPaths(1))
	require.NoError(t, err)

	_, err = batch.Run(context.Background(), "task-1", batchPaths(1))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestBatchRunRejectsEmptyTaskID(t *testing.T) {
	batch := NewBatch(&mockIngest{}, nil, BatchConfig{})

	_, err := batch.Run(context.Background(), "", batchPaths(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBatchCancellationSkipsRemaining(t *testing.T) {
	ingest := &mockIngest{delay: 30 * time.Millisecond}
	batch := NewBatch(ingest, nil, BatchConfig{Workers: 2, BatchSize: 2})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	paths := batchPaths(10)
	task, err := batch.Run(ctx, "task-1", paths)
	require.NoError(t, err)

	// Every file still has a result entry; unsubmitted ones are marked
	// cancelled rather than silently dropped.
	assert.Equal(t, 10, task.Processed)
	assert.Len(t, task.Results, 10)
	assert.Greater(t, task.Failed, 0)
	for _, r := range task.Results {
		assert.NotEmpty(t, r.Path)
	}
}

func TestBatchStatusDuringRun(t *testing.T) {
	ingest := &mockIngest{delay: 20 * time.Millisecond}
	batch := NewBatch(ingest, nil, BatchConfig{Workers: 1, BatchSize: 2})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := batch.Run(context.Background(), "task-1", batchPaths(4))
		assert.NoError(t, err)
	}()

	// Poll until the task is registered, then snapshot mid-run.
	var status *domain.IngestionTask
	require.Eventually(t, func() bool {
		var err error
		status, err = batch.Status("task-1")
		return err == nil
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 4, status.Total)
	<-done

	final, err := batch.Status("task-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, final.Status)
	assert.Equal(t, 4, final.Processed)
}

func TestBatchStatusUnknownTask(t *testing.T) {
	batch := NewBatch(&mockIngest{}, nil, BatchConfig{})

	_, err := batch.Status("missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestBatchSnapshotCheckpoint(t *testing.T) {
	index := &mockVectorIndex{}
	batch := NewBatch(&mockIngest{}, index, BatchConfig{SnapshotName: "checkpoint"})

	_, err := batch.Run(context.Background(), "task-1", batchPaths(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"checkpoint"}, index.saved)
}
