// Package extractors provides implementations of the Extractor
// interface for various document formats. Each extractor knows how to
// pull text out of a specific MIME type.
//
// Extractors are registered with the Registry at startup; dispatch is
// by declared MIME type with priority breaking ties.
package extractors

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
	"github.com/custodia-labs/contexa/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry selects the highest-priority extractor for a MIME type.
// Unknown MIME types are rejected explicitly rather than falling
// through to a partial extraction.
type Registry struct {
	byMIME map[string][]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string][]driven.Extractor)}
}

// Register adds an extractor for all of its supported MIME types.
func (r *Registry) Register(e driven.Extractor) {
	for _, mt := range e.SupportedMIMETypes() {
		r.byMIME[mt] = append(r.byMIME[mt], e)
		sort.SliceStable(r.byMIME[mt], func(i, j int) bool {
			return r.byMIME[mt][i].Priority() > r.byMIME[mt][j].Priority()
		})
	}
}

// Supports reports whether any extractor handles the MIME type.
func (r *Registry) Supports(mimeType string) bool {
	return len(r.byMIME[mimeType]) > 0
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Extract dispatches to the best extractor for the file's MIME type.
func (r *Registry) Extract(ctx context.Context, raw *domain.RawFile) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	candidates := r.byMIME[raw.MIMEType]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no extractor for MIME type %q", domain.ErrUnsupportedType, raw.MIMEType)
	}

	logger.Debug("Extracting %s as %s", raw.Path, raw.MIMEType)
	return candidates[0].Extract(ctx, raw)
}
