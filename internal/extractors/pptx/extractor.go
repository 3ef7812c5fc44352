// Package pptx extracts text from PPTX presentations using the
// standard library's zip and xml support. Slide text lives in a:t
// elements inside ppt/slides/slideN.xml.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PPTX presentations.
type Extractor struct{}

// New creates a new PPTX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific extractor
}

// Extract renders each slide's text runs, one slide per paragraph.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a PPTX archive", domain.ErrInvalidInput)
	}

	var names []string
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "ppt/slides/slide") && strings.HasSuffix(file.Name, ".xml") {
			names = append(names, file.Name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		text := slideText(reader, name)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	return &driven.ExtractResult{
		Text:  b.String(),
		Title: titleFromPath(raw.Path),
		Metadata: map[string]any{
			"original_name": filepath.Base(raw.Path),
			"size":          raw.Size,
			"mod_time":      raw.ModTime,
			"mime_type":     raw.MIMEType,
			"format":        "pptx",
			"slides":        len(names),
		},
	}, nil
}

// slideText collects the chardata of every a:t element in a slide.
func slideText(reader *zip.Reader, name string) string {
	var content []byte
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return ""
		}
		content, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return ""
		}
		break
	}
	if content == nil {
		return ""
	}

	decoder := xml.NewDecoder(bytes.NewReader(content))
	var b strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String())
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
