// Package flat provides a brute-force in-memory vector index with
// file-pair snapshot persistence. It trades search speed for exact
// results and zero external dependencies; the index is assumed to fit
// in a single process's memory.
package flat

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
	"github.com/custodia-labs/contexa/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a flat (exhaustive) L2 vector index. Reads are safe
// concurrently; writes are serialised by an internal lock. Delete
// rebuilds the backing slices, an O(n) operation.
type Index struct {
	mu        sync.RWMutex
	dimension int
	dir       string

	ids      []string
	vectors  [][]float32
	metadata []map[string]string
}

// New creates an empty index for vectors of the given dimension.
// Snapshots are stored under dir.
func New(dimension int, dir string) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", domain.ErrInvalidInput, dimension)
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}
	return &Index{dimension: dimension, dir: dir}, nil
}

// Dimension returns the configured vector dimension.
func (x *Index) Dimension() int {
	return x.dimension
}

// Len returns the number of live entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Add appends vectors with their IDs and metadata. A dimension mismatch
// on any vector aborts the whole call with no partial append; this
// indicates a configuration error, not bad data.
func (x *Index) Add(_ context.Context, ids []string, vectors [][]float32, metadata []map[string]string) error {
	if len(ids) != len(vectors) || len(ids) != len(metadata) {
		return fmt.Errorf("%w: ids/vectors/metadata length mismatch", domain.ErrInvalidInput)
	}
	for i, vec := range vectors {
		if len(vec) != x.dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
				domain.ErrDimensionMismatch, i, len(vec), x.dimension)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = append(x.ids, ids...)
	x.vectors = append(x.vectors, vectors...)
	x.metadata = append(x.metadata, metadata...)
	return nil
}

// Search returns up to k hits ordered by ascending L2 distance. The
// distance is converted to a similarity score via 1/(1+distance).
func (x *Index) Search(_ context.Context, query []float32, k int) ([]driven.IndexHit, error) {
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrDimensionMismatch, len(query), x.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]driven.IndexHit, 0, len(x.vectors))
	for i, vec := range x.vectors {
		d := l2Distance(query, vec)
		hits = append(hits, driven.IndexHit{
			ID:         x.ids[i],
			Metadata:   x.metadata[i],
			Distance:   d,
			Similarity: 1.0 / (1.0 + d),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Delete removes an entry by ID by rebuilding the backing slices.
// Remaining entries keep their metadata but their internal positions
// shift. Unknown IDs are a no-op.
func (x *Index) Delete(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	found := false
	for _, existing := range x.ids {
		if existing == id {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	ids := make([]string, 0, len(x.ids)-1)
	vectors := make([][]float32, 0, len(x.vectors)-1)
	metadata := make([]map[string]string, 0, len(x.metadata)-1)
	for i, existing := range x.ids {
		if existing == id {
			continue
		}
		ids = append(ids, existing)
		vectors = append(vectors, x.vectors[i])
		metadata = append(metadata, x.metadata[i])
	}

	x.ids = ids
	x.vectors = vectors
	x.metadata = metadata
	logger.Debug("Vector index: deleted %s, %d entries remain", id, len(x.ids))
	return nil
}

// vectorSnapshot is the on-disk form of the vector structure.
type vectorSnapshot struct {
	Dimension int
	Vectors   [][]float32
}

// mappingSnapshot is the on-disk form of the ID-to-metadata mapping.
type mappingSnapshot struct {
	IDs      []string
	Metadata []map[string]string
}

// Save persists the index as a pair of files: <name>.vec for the
// vector structure and <name>.meta for the ID mapping. Writes go to
// temp files first so a crash never leaves a half-written snapshot.
func (x *Index) Save(name string) error {
	x.mu.RLock()
	vec := vectorSnapshot{Dimension: x.dimension, Vectors: x.vectors}
	mapping := mappingSnapshot{IDs: x.ids, Metadata: x.metadata}
	x.mu.RUnlock()

	if err := writeGob(x.path(name, ".vec"), vec); err != nil {
		return fmt.Errorf("saving vector file: %w", err)
	}
	if err := writeGob(x.path(name, ".meta"), mapping); err != nil {
		return fmt.Errorf("saving mapping file: %w", err)
	}
	logger.Info("Vector index: saved snapshot %q (%d entries)", name, len(mapping.IDs))
	return nil
}

// Load restores a named snapshot. If either file of the pair is
// missing the index is left empty and Load returns nil: a partial
// pair means "index not found", not corruption.
func (x *Index) Load(name string) error {
	vecPath := x.path(name, ".vec")
	metaPath := x.path(name, ".meta")

	var vec vectorSnapshot
	var mapping mappingSnapshot

	if err := readGob(vecPath, &vec); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Vector index: snapshot %q not found, starting empty", name)
			x.reset()
			return nil
		}
		return fmt.Errorf("loading vector file: %w", err)
	}
	if err := readGob(metaPath, &mapping); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Vector index: mapping for %q not found, starting empty", name)
			x.reset()
			return nil
		}
		return fmt.Errorf("loading mapping file: %w", err)
	}

	if vec.Dimension != x.dimension {
		return fmt.Errorf("%w: snapshot dimension %d, index expects %d",
			domain.ErrDimensionMismatch, vec.Dimension, x.dimension)
	}
	if len(vec.Vectors) != len(mapping.IDs) || len(mapping.IDs) != len(mapping.Metadata) {
		return fmt.Errorf("snapshot %q: vector and mapping files are inconsistent", name)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = mapping.IDs
	x.vectors = vec.Vectors
	x.metadata = mapping.Metadata
	logger.Info("Vector index: loaded snapshot %q (%d entries)", name, len(x.ids))
	return nil
}

func (x *Index) reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = nil
	x.vectors = nil
	x.metadata = nil
}

func (x *Index) path(name, ext string) string {
	return filepath.Join(x.dir, name+ext)
}

func writeGob(path string, v any) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
