package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testDocument(id, uri string, version int) *domain.Document {
	return &domain.Document{
		ID:               id,
		KnowledgeBaseID:  "kb",
		URI:              uri,
		Title:            "note",
		Content:          "raw content",
		ProcessedContent: "processed content",
		ContentHash:      "hash-" + id,
		FileType:         "text/plain",
		Version:          version,
		Status:           domain.EmbeddingCompleted,
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc-1", "/notes/a.txt", 1)
	doc.Metadata = map[string]any{"original_name": "a.txt", "size": float64(12)}
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "kb", got.KnowledgeBaseID)
	assert.Equal(t, "/notes/a.txt", got.URI)
	assert.Equal(t, "raw content", got.Content)
	assert.Equal(t, "processed content", got.ProcessedContent)
	assert.Equal(t, domain.EmbeddingCompleted, got.Status)
	assert.Equal(t, doc.Metadata, got.Metadata)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestDocumentUpsert(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc-1", "/notes/a.txt", 1)
	require.NoError(t, docs.SaveDocument(ctx, doc))

	doc.Content = "rewritten"
	doc.Status = domain.EmbeddingProcessing
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", got.Content)
	assert.Equal(t, domain.EmbeddingProcessing, got.Status)

	all, err := docs.ListDocuments(ctx, "kb")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetDocumentNotFound(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	_, err := docs.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = docs.GetDocumentByHash(ctx, "kb", "no-such-hash")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = docs.GetDocumentByURI(ctx, "kb", "/missing.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, docs.DeleteDocument(ctx, "missing"), domain.ErrNotFound)
}

func TestGetDocumentByURILatestVersion(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	v1 := testDocument("doc-v1", "/notes/a.txt", 1)
	v2 := testDocument("doc-v2", "/notes/a.txt", 2)
	v2.ParentID = "doc-v1"
	require.NoError(t, docs.SaveDocument(ctx, v1))
	require.NoError(t, docs.SaveDocument(ctx, v2))

	got, err := docs.GetDocumentByURI(ctx, "kb", "/notes/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "doc-v2", got.ID)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "doc-v1", got.ParentID)

	// A different knowledge base does not see the document.
	_, err = docs.GetDocumentByURI(ctx, "other", "/notes/a.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetDocumentByHash(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc-1", "/notes/a.txt", 1)
	doc.ContentHash = "abc123"
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocumentByHash(ctx, "kb", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
}

func TestChunkRoundTripAndReplace(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "/a.txt", 1)))

	first := []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "first", Position: 0,
			Embedding: []float32{0.1, -2.5, 3},
			Metadata:  map[string]any{"mime_type": "text/plain"}},
		{ID: "c2", DocumentID: "doc-1", Content: "second", Position: 1},
	}
	require.NoError(t, docs.SaveChunks(ctx, first))

	chunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Content)
	assert.Equal(t, []float32{0.1, -2.5, 3}, chunks[0].Embedding)
	assert.Equal(t, map[string]any{"mime_type": "text/plain"}, chunks[0].Metadata)

	chunk, err := docs.GetChunk(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "second", chunk.Content)
	assert.Nil(t, chunk.Embedding)

	// Saving a new set replaces the old one.
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c3", DocumentID: "doc-1", Content: "replacement", Position: 0},
	}))
	chunks, err = docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c3", chunks[0].ID)

	_, err = docs.GetChunk(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteDocumentCascadesChunks(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "/a.txt", 1)))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "body", Position: 0},
	}))

	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))

	_, err := docs.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	chunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestMessagesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	msgs := store.MessageStore()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, content := range []string{"oldest", "middle", "newest"} {
		require.NoError(t, store.AppendMessage(ctx, domain.Message{
			ID:             content,
			ConversationID: "conv-1",
			Role:           domain.RoleUser,
			Content:        content,
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := msgs.GetRecentMessages(ctx, "conv-1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newest", got[0].Content)
	assert.Equal(t, "middle", got[1].Content)
	assert.Equal(t, domain.RoleUser, got[0].Role)

	empty, err := msgs.GetRecentMessages(ctx, "unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -3.25, 1e-8}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.DocumentStore().SaveDocument(context.Background(),
		testDocument("doc-1", "/a.txt", 1)))
	require.NoError(t, store.Close())

	// Reopening runs migrate again; applied versions are skipped and
	// existing data survives.
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.DocumentStore().GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
}
