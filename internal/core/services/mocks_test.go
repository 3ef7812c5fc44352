package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
	"github.com/custodia-labs/contexa/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	mu        sync.Mutex
	hits      []driven.IndexHit
	added     []string
	deleted   []string
	saved     []string
	searchErr error
	addErr    error
}

func (m *mockVectorIndex) Add(_ context.Context, ids []string, _ [][]float32, _ []map[string]string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, ids...)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.IndexHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockVectorIndex) Save(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, name)
	return nil
}

func (m *mockVectorIndex) Load(_ string) error { return nil }
func (m *mockVectorIndex) Dimension() int      { return 3 }
func (m *mockVectorIndex) Len() int            { return len(m.hits) }

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	vector   []float32
	embedErr error
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.vector != nil {
		return m.vector, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		vec, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return 3 }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockDocStore implements driven.DocumentStore over in-memory maps.
type mockDocStore struct {
	mu        sync.Mutex
	documents map[string]*domain.Document
	chunks    map[string][]domain.Chunk // by document ID
	saveErr   error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{
		documents: make(map[string]*domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

func (m *mockDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *doc
	m.documents[doc.ID] = &copied
	return nil
}

func (m *mockDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockDocStore) GetDocumentByHash(_ context.Context, kbID, hash string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.documents {
		if doc.KnowledgeBaseID == kbID && doc.ContentHash == hash {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocStore) GetDocumentByURI(_ context.Context, kbID, uri string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.Document
	for _, doc := range m.documents {
		if doc.KnowledgeBaseID != kbID || doc.URI != uri {
			continue
		}
		if latest == nil || doc.Version > latest.Version {
			latest = doc
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *mockDocStore) ListDocuments(_ context.Context, kbID string) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs []domain.Document
	for _, doc := range m.documents {
		if doc.KnowledgeBaseID == kbID {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (m *mockDocStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.documents, id)
	delete(m.chunks, id)
	return nil
}

func (m *mockDocStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[chunks[0].DocumentID] = append([]domain.Chunk(nil), chunks...)
	return nil
}

func (m *mockDocStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chunks := append([]domain.Chunk(nil), m.chunks[documentID]...)
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Position < chunks[j].Position })
	return chunks, nil
}

func (m *mockDocStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunks := range m.chunks {
		for _, c := range chunks {
			if c.ID == id {
				copied := c
				return &copied, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// mockMessageStore implements driven.MessageStore for testing.
type mockMessageStore struct {
	messages []domain.Message // newest first
	err      error
}

func (m *mockMessageStore) GetRecentMessages(_ context.Context, _ string, limit int) ([]domain.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.messages) {
		return m.messages, nil
	}
	return m.messages[:limit], nil
}

// mockWebSearcher implements driven.WebSearcher for testing.
type mockWebSearcher struct {
	results []driven.WebResult
	err     error
	delay   time.Duration
}

func (m *mockWebSearcher) Search(ctx context.Context, _ string, limit int) ([]driven.WebResult, error) {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.results) {
		return m.results, nil
	}
	return m.results[:limit], nil
}

// mockReranker implements driven.Reranker for testing.
type mockReranker struct {
	err    error
	called bool
}

func (m *mockReranker) Rerank(_ context.Context, _ string, results []domain.RetrievalResult) ([]domain.RetrievalResult, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	// Reverse so callers can observe the reranker ran.
	out := make([]domain.RetrievalResult, len(results))
	for i, r := range results {
		out[len(results)-1-i] = r
	}
	return out, nil
}

// mockRetrieval implements driving.RetrievalService for testing.
type mockRetrieval struct {
	results []domain.RetrievalResult
	err     error
}

func (m *mockRetrieval) Retrieve(_ context.Context, _ string, _ domain.RetrievalOptions) ([]domain.RetrievalResult, error) {
	return m.results, m.err
}

func (m *mockRetrieval) RetrieveWithRerank(_ context.Context, _ string, _ int, _ domain.RetrievalOptions) ([]domain.RetrievalResult, error) {
	return m.results, m.err
}

func (m *mockRetrieval) History() []driving.RetrievalRecord { return nil }

// mockExtractor implements driven.Extractor for testing.
type mockExtractor struct {
	mimeTypes []string
	priority  int
	result    *driven.ExtractResult
	err       error
}

func (m *mockExtractor) SupportedMIMETypes() []string { return m.mimeTypes }
func (m *mockExtractor) Priority() int                { return m.priority }

func (m *mockExtractor) Extract(_ context.Context, _ *domain.RawFile) (*driven.ExtractResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockRegistry implements driven.ExtractorRegistry with a single
// extractor for all MIME types.
type mockRegistry struct {
	extractor driven.Extractor
}

func (m *mockRegistry) Extract(ctx context.Context, raw *domain.RawFile) (*driven.ExtractResult, error) {
	return m.extractor.Extract(ctx, raw)
}

func (m *mockRegistry) Supports(_ string) bool { return true }

// mockIngest implements driving.IngestService for batch testing.
type mockIngest struct {
	mu     sync.Mutex
	failOn map[string]error
	delay  time.Duration
	calls  []string
	result *domain.IngestResult
}

func (m *mockIngest) Process(ctx context.Context, path, _ string) (*domain.IngestResult, error) {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.mu.Unlock()

	if err, ok := m.failOn[path]; ok {
		return nil, err
	}
	if m.result != nil {
		copied := *m.result
		return &copied, nil
	}
	return &domain.IngestResult{DocumentID: path, Chunks: 1}, nil
}

func (m *mockIngest) ProcessWithTimeout(ctx context.Context, path, mimeType string, _ time.Duration) (*domain.IngestResult, error) {
	return m.Process(ctx, path, mimeType)
}

func (m *mockIngest) KnowledgeBaseID() string { return "default" }
