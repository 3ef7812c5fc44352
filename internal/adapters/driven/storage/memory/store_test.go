package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

func TestDocumentStoreRoundTrip(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", KnowledgeBaseID: "kb", URI: "/notes.txt", ContentHash: "abc", Version: 1}
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "/notes.txt", got.URI)

	byHash, err := store.GetDocumentByHash(ctx, "kb", "abc")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", byHash.ID)

	_, err = store.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetDocumentByHash(ctx, "other-kb", "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStoreByURILatestVersion(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "v1", KnowledgeBaseID: "kb", URI: "/a.txt", Version: 1}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "v2", KnowledgeBaseID: "kb", URI: "/a.txt", Version: 2}))

	got, err := store.GetDocumentByURI(ctx, "kb", "/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.ID)
}

func TestDocumentStoreDeleteCascades(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", KnowledgeBaseID: "kb"}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "first"},
		{ID: "c2", DocumentID: "doc-1", Content: "second"},
	}))

	chunk, err := store.GetChunk(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "second", chunk.Content)

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err = store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestMessageStoreNewestFirst(t *testing.T) {
	store := NewMessageStore()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Append(ctx, domain.Message{
			ID:             string(rune('a' + i)),
			ConversationID: "conv-1",
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	msgs, err := store.GetRecentMessages(ctx, "conv-1", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "d", msgs[0].ID)
	assert.Equal(t, "c", msgs[1].ID)

	empty, err := store.GetRecentMessages(ctx, "unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
