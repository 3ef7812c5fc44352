package plaintext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contexa/internal/core/domain"
)

func TestExtract(t *testing.T) {
	e := New()
	modTime := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	result, err := e.Extract(context.Background(), &domain.RawFile{
		Path:     "/docs/release_notes-2026.md",
		Content:  []byte("# Release notes\n\nFixed the indexing bug."),
		MIMEType: "text/markdown",
		Size:     41,
		ModTime:  modTime,
	})
	require.NoError(t, err)

	assert.Equal(t, "# Release notes\n\nFixed the indexing bug.", result.Text)
	assert.Equal(t, "release notes 2026", result.Title)
	assert.Equal(t, "release_notes-2026.md", result.Metadata["original_name"])
	assert.Equal(t, int64(41), result.Metadata["size"])
	assert.Equal(t, modTime, result.Metadata["mod_time"])
	assert.Equal(t, "text/markdown", result.Metadata["mime_type"])
}

func TestExtractNilFile(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/user/meeting_notes.txt", "meeting notes"},
		{"project-plan.md", "project plan"},
		{"README", "README"},
		{"/tmp/a_b-c.csv", "a b c"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, titleFromPath(tt.path))
	}
}
