// Package chunker provides fixed-size overlapping text chunking with
// per-file-type profiles.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

// Default profile values.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
	DefaultMinLength = 50
)

// Profile controls chunking for one family of file types.
type Profile struct {
	// ChunkSize is the chunk length in characters.
	ChunkSize int

	// Overlap is the number of characters shared between adjacent chunks.
	Overlap int

	// MinLength drops chunks shorter than this, except possibly the
	// final chunk of a document.
	MinLength int
}

// defaultProfiles maps MIME types to chunking profiles. Types without
// an entry use the default profile.
var defaultProfiles = map[string]Profile{
	"application/pdf": {ChunkSize: 800, Overlap: 150, MinLength: 50},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {ChunkSize: 1000, Overlap: 200, MinLength: 50},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {ChunkSize: 500, Overlap: 50, MinLength: 20},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {ChunkSize: 600, Overlap: 100, MinLength: 30},
}

// Processor splits document content into fixed-size overlapping chunks.
type Processor struct {
	profiles map[string]Profile
	fallback Profile
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithProfile sets the profile for a MIME type.
func WithProfile(mimeType string, p Profile) Option {
	return func(c *Processor) {
		c.profiles[mimeType] = p
	}
}

// WithFallback sets the profile used for MIME types without their own.
func WithFallback(p Profile) Option {
	return func(c *Processor) {
		c.fallback = p
	}
}

// New creates a chunker with the default per-type profiles.
func New(opts ...Option) *Processor {
	c := &Processor{
		profiles: make(map[string]Profile, len(defaultProfiles)),
		fallback: Profile{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultOverlap,
			MinLength: DefaultMinLength,
		},
	}
	for k, v := range defaultProfiles {
		c.profiles[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProfileFor returns the sanitised profile for a MIME type.
func (c *Processor) ProfileFor(mimeType string) Profile {
	p, ok := c.profiles[mimeType]
	if !ok {
		p = c.fallback
	}
	if p.ChunkSize <= 0 {
		p.ChunkSize = DefaultChunkSize
	}
	if p.Overlap < 0 {
		p.Overlap = 0
	}
	// Ensure overlap doesn't exceed chunk size.
	if p.Overlap >= p.ChunkSize {
		p.Overlap = p.ChunkSize / 4
	}
	return p
}

// Process splits the document's processed content into chunks using the
// profile for its file type. Chunks shorter than the profile's minimum
// length are dropped, except possibly the final chunk.
func (c *Processor) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	content := doc.ProcessedContent
	if content == "" {
		// Empty content produces no chunks.
		return nil, nil
	}

	p := c.ProfileFor(doc.FileType)
	spans := split(content, p)

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, span := range spans {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    span,
			Position:   i,
			Metadata: map[string]any{
				"mime_type": doc.FileType,
			},
		})
	}
	return chunks, nil
}

// split produces overlapping spans of at most ChunkSize characters.
func split(content string, p Profile) []string {
	var spans []string
	contentLen := len(content)

	start := 0
	for start < contentLen {
		end := start + p.ChunkSize
		if end > contentLen {
			end = contentLen
		}
		span := content[start:end]
		isFinal := end == contentLen

		if len(strings.TrimSpace(span)) >= p.MinLength || isFinal {
			spans = append(spans, span)
		}

		if isFinal {
			break
		}
		start += p.ChunkSize - p.Overlap
	}
	return spans
}
