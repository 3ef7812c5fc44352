package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

var (
	ingestRecursive bool
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest files into the knowledge base",
	Long: `Extracts, chunks, embeds and indexes the given files.
Directories are expanded to their files; pass --recursive to descend
into subdirectories. Duplicate content is skipped and changed files
are versioned automatically.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "descend into subdirectories")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the task report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if batchService == nil {
		return errors.New("ingestion service not configured")
	}

	paths, err := expandPaths(args, ingestRecursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		cmd.Println("No files to ingest.")
		return nil
	}

	ctx := context.Background()
	taskID := uuid.New().String()

	cmd.Printf("Ingesting %d files...\n", len(paths))

	task, err := runBatchWithProgress(ctx, cmd, taskID, paths)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if ingestJSON {
		return outputTaskJSON(cmd, task)
	}
	return outputTaskSummary(cmd, task)
}

// runBatchWithProgress runs the batch while displaying progress updates.
func runBatchWithProgress(ctx context.Context, cmd *cobra.Command, taskID string, paths []string) (*domain.IngestionTask, error) {
	type outcome struct {
		task *domain.IngestionTask
		err  error
	}

	resultCh := make(chan outcome, 1)
	go func() {
		task, err := batchService.Run(ctx, taskID, paths)
		resultCh <- outcome{task: task, err: err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case res := <-resultCh:
			return res.task, res.err
		case <-ticker.C:
			status, err := batchService.Status(taskID)
			if err == nil && status.Processed > lastCount {
				cmd.Printf("\rProcessing... %d/%d files", status.Processed, status.Total)
				lastCount = status.Processed
			}
		}
	}
}

func outputTaskJSON(cmd *cobra.Command, task *domain.IngestionTask) error {
	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputTaskSummary(cmd *cobra.Command, task *domain.IngestionTask) error {
	cmd.Printf("\rDone: %d processed, %d succeeded, %d failed\n",
		task.Processed, task.Succeeded, task.Failed)

	for _, r := range task.Results {
		if r.Err != "" {
			cmd.Printf("  FAILED %s: %s\n", r.Path, r.Err)
			continue
		}
		if r.Result == nil {
			continue
		}
		switch {
		case r.Result.Duplicate:
			cmd.Printf("  skipped %s (duplicate)\n", r.Path)
		case r.Result.Version != nil && r.Result.Version.IsNewVersion:
			cmd.Printf("  versioned %s (%d chunks)\n", r.Path, r.Result.Chunks)
		case r.Result.Version != nil:
			cmd.Printf("  updated %s (%d chunks)\n", r.Path, r.Result.Chunks)
		default:
			cmd.Printf("  added %s (%d chunks)\n", r.Path, r.Result.Chunks)
		}
	}
	return nil
}

// expandPaths resolves arguments to a flat list of files.
func expandPaths(args []string, recursive bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			matches = []string{arg}
		}
		for _, match := range matches {
			expanded, err := expandPath(match, recursive)
			if err != nil {
				return nil, err
			}
			paths = append(paths, expanded...)
		}
	}
	return paths, nil
}

func expandPath(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	return files, nil
}
