// Package pdf extracts text from PDF documents by shelling out to
// pdftotext (poppler-utils). The external command is abstracted behind
// a runner so tests can run without the binary installed.
package pdf

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// ExecRunner runs commands with os/exec. It is the production
// CommandRunner.
type ExecRunner struct{}

// Run executes the command and returns its stdout.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles PDF documents.
type Extractor struct {
	runner driven.CommandRunner
}

// New creates a PDF extractor using pdftotext. A nil runner defaults
// to executing the real binary.
func New(runner driven.CommandRunner) *Extractor {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Extractor{runner: runner}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific extractor
}

// Extract converts a PDF to text via pdftotext, reading from the file
// path and writing to stdout. The runner inherits the caller's context
// so extraction is cancelled with it.
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawFile) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", raw.Path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext %s: %w", filepath.Base(raw.Path), err)
	}

	return &driven.ExtractResult{
		Text:  string(out),
		Title: titleFromPath(raw.Path),
		Metadata: map[string]any{
			"original_name": filepath.Base(raw.Path),
			"size":          raw.Size,
			"mod_time":      raw.ModTime,
			"mime_type":     raw.MIMEType,
		},
	}, nil
}

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
