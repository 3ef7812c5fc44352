// Package xlsx extracts text from XLSX workbooks using the standard
// library's zip and xml support. Cell strings live in a shared-string
// table referenced by index from each worksheet.
package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/contexa/internal/core/domain"
	"github.com/custodia-labs/contexa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles XLSX workbooks.
type Extractor struct{}

// New creates a new XLSX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific extractor
}

// Extract renders each worksheet as lines of tab-separated cell values.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not an XLSX archive", domain.ErrInvalidInput)
	}

	shared, err := readSharedStrings(reader)
	if err != nil {
		return nil, err
	}

	content, err := readSheets(reader, shared)
	if err != nil {
		return nil, err
	}

	return &driven.ExtractResult{
		Text:  content,
		Title: titleFromPath(raw.Path),
		Metadata: map[string]any{
			"original_name": filepath.Base(raw.Path),
			"size":          raw.Size,
			"mod_time":      raw.ModTime,
			"mime_type":     raw.MIMEType,
			"format":        "xlsx",
		},
	}, nil
}

// sharedStringsXML represents xl/sharedStrings.xml.
type sharedStringsXML struct {
	Items []sharedItem `xml:"si"`
}

type sharedItem struct {
	Text string   `xml:"t"`
	Runs []string `xml:"r>t"`
}

func (s sharedItem) value() string {
	if s.Text != "" {
		return s.Text
	}
	return strings.Join(s.Runs, "")
}

func readSharedStrings(reader *zip.Reader) ([]string, error) {
	content, err := readZipFile(reader, "xl/sharedStrings.xml")
	if err != nil || content == nil {
		// Workbooks with only numeric cells omit the table.
		return nil, err
	}

	var table sharedStringsXML
	if err := xml.Unmarshal(content, &table); err != nil {
		return nil, fmt.Errorf("%w: malformed shared strings", domain.ErrInvalidInput)
	}

	strs := make([]string, len(table.Items))
	for i, item := range table.Items {
		strs[i] = item.value()
	}
	return strs, nil
}

// worksheetXML represents one xl/worksheets/sheetN.xml.
type worksheetXML struct {
	Rows []sheetRow `xml:"sheetData>row"`
}

type sheetRow struct {
	Cells []sheetCell `xml:"c"`
}

type sheetCell struct {
	Type  string `xml:"t,attr"`
	Value string `xml:"v"`
}

func readSheets(reader *zip.Reader, shared []string) (string, error) {
	var names []string
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "xl/worksheets/sheet") && strings.HasSuffix(file.Name, ".xml") {
			names = append(names, file.Name)
		}
	}
	// Sort on the numeric sheet index so sheet2 precedes sheet10.
	sort.Slice(names, func(i, j int) bool {
		a, b := sheetIndex(names[i]), sheetIndex(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	for _, name := range names {
		content, err := readZipFile(reader, name)
		if err != nil || content == nil {
			continue
		}

		var sheet worksheetXML
		if err := xml.Unmarshal(content, &sheet); err != nil {
			continue
		}

		for _, row := range sheet.Rows {
			values := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				values = append(values, cellValue(cell, shared))
			}
			line := strings.TrimSpace(strings.Join(values, "\t"))
			if line == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(line)
		}
	}
	return b.String(), nil
}

// sheetIndex parses the numeric suffix of xl/worksheets/sheetN.xml.
// Names without a numeric index sort after all numbered sheets.
func sheetIndex(name string) int {
	base := strings.TrimSuffix(strings.TrimPrefix(name, "xl/worksheets/sheet"), ".xml")
	idx, err := strconv.Atoi(base)
	if err != nil {
		return 1 << 30
	}
	return idx
}

// cellValue resolves a cell, looking shared-string cells up by index.
func cellValue(cell sheetCell, shared []string) string {
	if cell.Type != "s" {
		return cell.Value
	}
	idx, err := strconv.Atoi(cell.Value)
	if err != nil || idx < 0 || idx >= len(shared) {
		return ""
	}
	return shared[idx]
}

func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		return content, nil
	}
	return nil, nil
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
