package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
	"github.com/custodia-labs/contexa/internal/core/ports/driving"
	"github.com/custodia-labs/contexa/internal/logger"
	"github.com/custodia-labs/contexa/internal/postprocessors/chunker"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// DefaultMaxFileSize rejects files above this size before extraction.
const DefaultMaxFileSize = 50 << 20 // 50 MiB

// DefaultSimilarityThreshold separates in-place updates from new
// versions. A diff ratio at or above it updates in place; below it a
// new version is created. This is a tunable parameter.
const DefaultSimilarityThreshold = 0.95

// IngestConfig carries the ingestion pipeline's tunable settings.
type IngestConfig struct {
	// KnowledgeBaseID is the knowledge base documents are ingested into.
	KnowledgeBaseID string

	// FolderID optionally groups ingested documents.
	FolderID string

	// MaxFileSize rejects oversized files before reading their content.
	MaxFileSize int64

	// SimilarityThreshold is the diff-ratio cutoff between updating a
	// document in place and creating a new version.
	SimilarityThreshold float64
}

// Ingestor processes single files end to end: size check, extraction,
// normalisation, change detection, chunking, embedding and indexing.
type Ingestor struct {
	registry    driven.ExtractorRegistry
	chunks      *chunker.Processor
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	embeddings  driven.EmbeddingService
	cfg         IngestConfig
}

// NewIngestor creates an ingestion service. vectorIndex and embeddings
// are optional; without them documents are stored but not semantically
// indexed.
func NewIngestor(
	registry driven.ExtractorRegistry,
	chunks *chunker.Processor,
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embeddings driven.EmbeddingService,
	cfg IngestConfig,
) *Ingestor {
	if cfg.KnowledgeBaseID == "" {
		cfg.KnowledgeBaseID = "default"
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return &Ingestor{
		registry:    registry,
		chunks:      chunks,
		docStore:    docStore,
		vectorIndex: vectorIndex,
		embeddings:  embeddings,
		cfg:         cfg,
	}
}

// Process ingests one file. Duplicate content (identical hash) is
// skipped. Content that changed modestly updates the existing document
// in place; a substantial rewrite creates a new version linked to the
// original.
func (g *Ingestor) Process(ctx context.Context, path, mimeType string) (*domain.IngestResult, error) {
	raw, err := g.loadFile(path, mimeType)
	if err != nil {
		return nil, err
	}

	extracted, err := g.registry.Extract(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}

	processed := normalizeText(extracted.Text)
	hash := hashContent(processed)
	logger.Debug("Ingest %s: %d bytes extracted, hash %.12s", filepath.Base(path), len(extracted.Text), hash)

	// Duplicate by hash: identical content already ingested.
	if existing, err := g.docStore.GetDocumentByHash(ctx, g.cfg.KnowledgeBaseID, hash); err == nil {
		logger.Info("Ingest %s: duplicate of document %s, skipping", filepath.Base(path), existing.ID)
		return &domain.IngestResult{
			DocumentID:       existing.ID,
			Duplicate:        true,
			Content:          existing.Content,
			ProcessedContent: existing.ProcessedContent,
			Metadata:         existing.Metadata,
		}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}

	// Same logical identity, different content: decide between an
	// in-place update and a new version by line-level diff ratio.
	previous, err := g.docStore.GetDocumentByURI(ctx, g.cfg.KnowledgeBaseID, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check previous version: %w", err)
	}

	now := time.Now()
	if previous != nil {
		ratio := diffRatio(previous.ProcessedContent, processed)
		logger.Debug("Ingest %s: diff ratio %.3f vs document %s", filepath.Base(path), ratio, previous.ID)

		if ratio >= g.cfg.SimilarityThreshold {
			return g.updateInPlace(ctx, previous, extracted, processed, hash, ratio)
		}
		return g.newVersion(ctx, previous, raw, extracted, processed, hash, ratio, now)
	}

	doc := &domain.Document{
		ID:               uuid.New().String(),
		KnowledgeBaseID:  g.cfg.KnowledgeBaseID,
		FolderID:         g.cfg.FolderID,
		URI:              path,
		Title:            extracted.Title,
		Content:          extracted.Text,
		ProcessedContent: processed,
		ContentHash:      hash,
		FileType:         raw.MIMEType,
		Version:          1,
		Status:           domain.EmbeddingPending,
		Metadata:         extracted.Metadata,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	chunks, err := g.indexDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &domain.IngestResult{
		DocumentID:       doc.ID,
		Chunks:           chunks,
		Content:          doc.Content,
		ProcessedContent: doc.ProcessedContent,
		Metadata:         doc.Metadata,
	}, nil
}

// ProcessWithTimeout is Process bounded by a deadline. Exceeding the
// bound returns a timeout-specific error instead of hanging.
func (g *Ingestor) ProcessWithTimeout(ctx context.Context, path, mimeType string, timeout time.Duration) (*domain.IngestResult, error) {
	if timeout <= 0 {
		return g.Process(ctx, path, mimeType)
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := g.Process(deadlineCtx, path, mimeType)
	if err != nil && errors.Is(deadlineCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s after %s", domain.ErrExtractionTimeout, filepath.Base(path), timeout)
	}
	return result, err
}

// KnowledgeBaseID returns the knowledge base this ingestor writes into.
func (g *Ingestor) KnowledgeBaseID() string {
	return g.cfg.KnowledgeBaseID
}

// loadFile stats the file first so oversized files are rejected without
// reading their content into memory.
func (g *Ingestor) loadFile(path, mimeType string) (*domain.RawFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	if info.Size() > g.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d",
			domain.ErrFileTooLarge, filepath.Base(path), info.Size(), g.cfg.MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	return &domain.RawFile{
		Path:            path,
		MIMEType:        mimeType,
		Content:         content,
		Size:            info.Size(),
		ModTime:         info.ModTime(),
		KnowledgeBaseID: g.cfg.KnowledgeBaseID,
		FolderID:        g.cfg.FolderID,
	}, nil
}

// updateInPlace replaces the existing document's content without
// creating a version row. Its old chunks are removed from the index
// and replaced.
func (g *Ingestor) updateInPlace(
	ctx context.Context,
	doc *domain.Document,
	extracted *driven.ExtractResult,
	processed, hash string,
	ratio float64,
) (*domain.IngestResult, error) {
	if err := g.removeChunks(ctx, doc.ID); err != nil {
		return nil, err
	}

	doc.Content = extracted.Text
	doc.ProcessedContent = processed
	doc.ContentHash = hash
	doc.Title = extracted.Title
	doc.Metadata = extracted.Metadata
	doc.UpdatedAt = time.Now()
	doc.Status = domain.EmbeddingPending

	chunks, err := g.indexDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	logger.Info("Ingest: updated document %s in place (ratio %.3f)", doc.ID, ratio)
	return &domain.IngestResult{
		DocumentID:       doc.ID,
		Chunks:           chunks,
		Content:          doc.Content,
		ProcessedContent: doc.ProcessedContent,
		Metadata:         doc.Metadata,
		Version: &domain.VersionInfo{
			IsNewVersion: false,
			PreviousID:   doc.ID,
			DiffRatio:    ratio,
		},
	}, nil
}

// newVersion creates a new document row referencing the original.
// The original document and its chunks are left untouched.
func (g *Ingestor) newVersion(
	ctx context.Context,
	previous *domain.Document,
	raw *domain.RawFile,
	extracted *driven.ExtractResult,
	processed, hash string,
	ratio float64,
	now time.Time,
) (*domain.IngestResult, error) {
	doc := &domain.Document{
		ID:               uuid.New().String(),
		KnowledgeBaseID:  g.cfg.KnowledgeBaseID,
		FolderID:         g.cfg.FolderID,
		URI:              raw.Path,
		Title:            extracted.Title,
		Content:          extracted.Text,
		ProcessedContent: processed,
		ContentHash:      hash,
		FileType:         raw.MIMEType,
		ParentID:         previous.ID,
		Version:          previous.Version + 1,
		Status:           domain.EmbeddingPending,
		Metadata:         extracted.Metadata,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	chunks, err := g.indexDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	logger.Info("Ingest: created version %d of %s (ratio %.3f)", doc.Version, previous.ID, ratio)
	return &domain.IngestResult{
		DocumentID:       doc.ID,
		Chunks:           chunks,
		Content:          doc.Content,
		ProcessedContent: doc.ProcessedContent,
		Metadata:         doc.Metadata,
		Version: &domain.VersionInfo{
			IsNewVersion: true,
			PreviousID:   previous.ID,
			DiffRatio:    ratio,
		},
	}, nil
}

// indexDocument chunks, embeds and indexes a document, persisting its
// status transitions. The embedding-status lifecycle is pending ->
// processing -> completed or failed.
func (g *Ingestor) indexDocument(ctx context.Context, doc *domain.Document) (int, error) {
	doc.Status = domain.EmbeddingProcessing
	if err := g.docStore.SaveDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("save document: %w", err)
	}

	chunks, err := g.chunks.Process(ctx, doc)
	if err != nil {
		g.markFailed(ctx, doc)
		return 0, fmt.Errorf("chunk document: %w", err)
	}

	if g.embeddings != nil && g.vectorIndex != nil && len(chunks) > 0 {
		if err := g.embedAndIndex(ctx, doc, chunks); err != nil {
			g.markFailed(ctx, doc)
			return 0, err
		}
	}

	if err := g.docStore.SaveChunks(ctx, chunks); err != nil {
		g.markFailed(ctx, doc)
		return 0, fmt.Errorf("save chunks: %w", err)
	}

	doc.Status = domain.EmbeddingCompleted
	if err := g.docStore.SaveDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("save document status: %w", err)
	}
	return len(chunks), nil
}

func (g *Ingestor) embedAndIndex(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := g.embeddings.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ids := make([]string, len(chunks))
	metadata := make([]map[string]string, len(chunks))
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		ids[i] = chunks[i].ID
		metadata[i] = map[string]string{
			"document_id":       doc.ID,
			"knowledge_base_id": doc.KnowledgeBaseID,
			"folder_id":         doc.FolderID,
		}
	}

	if err := g.vectorIndex.Add(ctx, ids, vectors, metadata); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	return nil
}

// removeChunks drops a document's chunks from the vector index before
// its content is replaced.
func (g *Ingestor) removeChunks(ctx context.Context, documentID string) error {
	old, err := g.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load old chunks: %w", err)
	}
	if g.vectorIndex == nil {
		return nil
	}
	for _, c := range old {
		if err := g.vectorIndex.Delete(ctx, c.ID); err != nil {
			logger.Warn("Failed to delete vector %s: %v", c.ID, err)
		}
	}
	return nil
}

func (g *Ingestor) markFailed(ctx context.Context, doc *domain.Document) {
	doc.Status = domain.EmbeddingFailed
	if err := g.docStore.SaveDocument(ctx, doc); err != nil {
		logger.Warn("Failed to persist failed status for %s: %v", doc.ID, err)
	}
}
