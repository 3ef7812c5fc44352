// Package watch wires filesystem notifications into the ingestion
// pipeline so a knowledge base folder stays current without manual
// re-ingestion.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
	"github.com/custodia-labs/contexa/internal/core/ports/driving"
	"github.com/custodia-labs/contexa/internal/core/services"
	"github.com/custodia-labs/contexa/internal/logger"
)

// Watcher mirrors a directory tree into a knowledge base. Created and
// modified files are re-ingested; removed files have their documents
// and indexed vectors deleted.
type Watcher struct {
	knowledgeBaseID string
	root            string
	ingest          driving.IngestService
	docStore        driven.DocumentStore
	vectorIndex     driven.VectorIndex
	fsWatcher       *fsnotify.Watcher
}

// New creates a watcher for the given root directory. The knowledge
// base is taken from the ingest service so removals look up documents
// in the same knowledge base ingestion writes to.
func New(root string, ingest driving.IngestService, docStore driven.DocumentStore, vectorIndex driven.VectorIndex) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fs watcher: %w", err)
	}

	w := &Watcher{
		knowledgeBaseID: ingest.KnowledgeBaseID(),
		root:            root,
		ingest:          ingest,
		docStore:        docStore,
		vectorIndex:     vectorIndex,
		fsWatcher:       fsWatcher,
	}

	if err := w.addRecursive(root); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Run processes filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()

	logger.Info("Watching %s", w.root)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// handleEvent dispatches a single filesystem event.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if isHidden(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// New subdirectories join the watch set.
			if err := w.addRecursive(event.Name); err != nil {
				logger.Warn("Watching new directory %s: %v", event.Name, err)
			}
			return
		}
		w.ingestFile(ctx, event.Name)

	case event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return
		}
		w.ingestFile(ctx, event.Name)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.removeFile(ctx, event.Name)
	}
}

// ingestFile runs a single file through the ingestion pipeline.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	result, err := w.ingest.Process(ctx, path, services.MIMEForPath(path))
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) {
			logger.Debug("Skipping unsupported file %s", path)
			return
		}
		logger.Warn("Ingesting %s: %v", path, err)
		return
	}

	if result.Duplicate {
		logger.Debug("Unchanged content for %s, skipped", path)
		return
	}
	logger.Info("Ingested %s (%d chunks)", path, result.Chunks)
}

// removeFile deletes the document for a path along with its vectors.
func (w *Watcher) removeFile(ctx context.Context, path string) {
	doc, err := w.docStore.GetDocumentByURI(ctx, w.knowledgeBaseID, path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return
		}
		logger.Warn("Looking up removed file %s: %v", path, err)
		return
	}

	chunks, err := w.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		logger.Warn("Loading chunks for removed file %s: %v", path, err)
	}
	for _, chunk := range chunks {
		if err := w.vectorIndex.Delete(ctx, chunk.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Removing vector %s: %v", chunk.ID, err)
		}
	}

	if err := w.docStore.DeleteDocument(ctx, doc.ID); err != nil {
		logger.Warn("Deleting document for %s: %v", path, err)
		return
	}
	logger.Info("Removed %s from knowledge base", path)
}

// addRecursive registers a directory and all visible subdirectories.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isHidden(path) && path != root {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// isHidden reports whether any path component is dot-prefixed.
// The "." and ".." components do not count.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
