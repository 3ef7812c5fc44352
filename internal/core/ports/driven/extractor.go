package driven

import (
	"context"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

// Extractor extracts text from one family of file formats.
// Each extractor handles specific MIME types (e.g. PDF, DOCX).
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract pulls text and basic metadata from a raw file.
	Extract(ctx context.Context, raw *domain.RawFile) (*ExtractResult, error)
}

// ExtractResult contains the output of extraction.
// Note: extraction only produces raw text. Normalisation and chunking
// are handled by the ingestion service.
type ExtractResult struct {
	// Text is the raw extracted text before normalisation.
	Text string

	// Title is the human-readable title derived from the file.
	Title string

	// Metadata contains per-file details (original name, size, timestamps).
	Metadata map[string]any
}

// ExtractorRegistry selects the appropriate extractor for a file.
type ExtractorRegistry interface {
	// Extract dispatches to the highest-priority extractor registered
	// for the file's MIME type. An unregistered MIME type returns
	// domain.ErrUnsupportedType.
	Extract(ctx context.Context, raw *domain.RawFile) (*ExtractResult, error)

	// Supports reports whether any extractor handles the MIME type.
	Supports(mimeType string) bool
}
