package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

// buildWorkbook zips the given archive entries into an XLSX body.
func buildWorkbook(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func worksheet(cells ...string) string {
	var b strings.Builder
	b.WriteString("<worksheet><sheetData><row>")
	for _, c := range cells {
		b.WriteString("<c><v>")
		b.WriteString(c)
		b.WriteString("</v></c>")
	}
	b.WriteString("</row></sheetData></worksheet>")
	return b.String()
}

func TestExtractSharedStrings(t *testing.T) {
	body := buildWorkbook(t, map[string]string{
		"xl/sharedStrings.xml":     `<sst><si><t>alpha</t></si><si><t>beta</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData><row><c t="s"><v>0</v></c><c t="s"><v>1</v></c><c><v>42</v></c></row></sheetData></worksheet>`,
	})

	result, err := New().Extract(context.Background(), &domain.RawFile{
		Path:    "/docs/budget_2026.xlsx",
		Content: body,
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha\tbeta\t42", result.Text)
	assert.Equal(t, "budget 2026", result.Title)
}

func TestExtractSheetsInWorkbookOrder(t *testing.T) {
	body := buildWorkbook(t, map[string]string{
		"xl/worksheets/sheet10.xml": worksheet("tenth"),
		"xl/worksheets/sheet2.xml":  worksheet("second"),
		"xl/worksheets/sheet1.xml":  worksheet("first"),
	})

	result, err := New().Extract(context.Background(), &domain.RawFile{
		Path:    "/docs/multi.xlsx",
		Content: body,
	})
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\ntenth", result.Text)
}

func TestExtractNotAnArchive(t *testing.T) {
	_, err := New().Extract(context.Background(), &domain.RawFile{
		Path:    "/docs/fake.xlsx",
		Content: []byte("plain text, not a zip"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
