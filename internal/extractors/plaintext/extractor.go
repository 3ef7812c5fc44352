// Package plaintext extracts text from plain-text file formats.
package plaintext

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
		"text/html",
		"text/x-go",
		"text/x-python",
		"text/yaml",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract converts raw bytes to text content.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	return &driven.ExtractResult{
		Text:  string(raw.Content),
		Title: titleFromPath(raw.Path),
		Metadata: map[string]any{
			"original_name": filepath.Base(raw.Path),
			"size":          raw.Size,
			"mod_time":      raw.ModTime,
			"mime_type":     raw.MIMEType,
		},
	}, nil
}

// titleFromPath derives a human-readable title from a file path.
func titleFromPath(path string) string {
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
