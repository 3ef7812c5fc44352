package driven

import (
	"context"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when absent.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByHash finds a document in a knowledge base by content
	// hash. Returns domain.ErrNotFound when absent.
	GetDocumentByHash(ctx context.Context, knowledgeBaseID, hash string) (*domain.Document, error)

	// GetDocumentByURI finds the latest document version for a URI
	// within a knowledge base. Returns domain.ErrNotFound when absent.
	GetDocumentByURI(ctx context.Context, knowledgeBaseID, uri string) (*domain.Document, error)

	// ListDocuments returns all documents in a knowledge base.
	ListDocuments(ctx context.Context, knowledgeBaseID string) ([]domain.Document, error)

	// DeleteDocument removes a document and cascades to its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunks stores chunks for a document, replacing any existing set.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document in position order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	// Returns domain.ErrNotFound when absent.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)
}
