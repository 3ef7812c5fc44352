package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
)

// stubExtractor implements driven.Extractor for testing.
type stubExtractor struct {
	mimeTypes []string
	priority  int
	text      string
}

func (s *stubExtractor) SupportedMIMETypes() []string { return s.mimeTypes }
func (s *stubExtractor) Priority() int                { return s.priority }

func (s *stubExtractor) Extract(_ context.Context, _ *domain.RawFile) (*driven.ExtractResult, error) {
	return &driven.ExtractResult{Text: s.text}, nil
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{mimeTypes: []string{"text/plain"}, priority: 5, text: "plain"})
	r.Register(&stubExtractor{mimeTypes: []string{"application/pdf"}, priority: 50, text: "pdf"})

	result, err := r.Extract(context.Background(), &domain.RawFile{MIMEType: "application/pdf"})
	require.NoError(t, err)
	assert.Equal(t, "pdf", result.Text)
}

func TestRegistryHighestPriorityWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{mimeTypes: []string{"text/plain"}, priority: 5, text: "fallback"})
	r.Register(&stubExtractor{mimeTypes: []string{"text/plain"}, priority: 50, text: "specific"})

	result, err := r.Extract(context.Background(), &domain.RawFile{MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "specific", result.Text)
}

func TestRegistryUnsupportedType(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{mimeTypes: []string{"text/plain"}, priority: 5})

	_, err := r.Extract(context.Background(), &domain.RawFile{MIMEType: "application/octet-stream"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistrySupports(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{mimeTypes: []string{"text/plain", "text/markdown"}, priority: 5})

	assert.True(t, r.Supports("text/plain"))
	assert.True(t, r.Supports("text/markdown"))
	assert.False(t, r.Supports("application/pdf"))
}

func TestRegistrySupportedMIMETypes(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{mimeTypes: []string{"text/plain"}, priority: 5})
	r.Register(&stubExtractor{mimeTypes: []string{"application/pdf"}, priority: 50})

	assert.Equal(t, []string{"application/pdf", "text/plain"}, r.SupportedMIMETypes())
}
