package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses space runs",
			input:    "hello    world",
			expected: "hello world",
		},
		{
			name:     "tabs become spaces",
			input:    "col1\tcol2\t\tcol3",
			expected: "col1 col2 col3",
		},
		{
			name:     "strips control characters",
			input:    "text\x00with\x07noise",
			expected: "textwithnoise",
		},
		{
			name:     "trims line whitespace",
			input:    "  padded line  \nnext",
			expected: "padded line\nnext",
		},
		{
			name:     "blank runs collapse to paragraph break",
			input:    "para one\n\n\n\npara two",
			expected: "para one\n\npara two",
		},
		{
			name:     "leading blanks dropped",
			input:    "\n\n\nfirst line",
			expected: "first line",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   \n\t\n   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeText(tt.input))
		})
	}
}

func TestHashContent(t *testing.T) {
	// Identical content always yields the same hash.
	assert.Equal(t, hashContent("same"), hashContent("same"))
	assert.NotEqual(t, hashContent("same"), hashContent("different"))

	// 64 hex characters of SHA-256.
	assert.Len(t, hashContent("anything"), 64)
}

func TestDiffRatio(t *testing.T) {
	tests := []struct {
		name     string
		old      string
		new      string
		expected float64
	}{
		{
			name:     "identical",
			old:      "a\nb\nc",
			new:      "a\nb\nc",
			expected: 1.0,
		},
		{
			name:     "nothing shared",
			old:      "a\nb",
			new:      "x\ny",
			expected: 0.0,
		},
		{
			name:     "one line of four changed",
			old:      "a\nb\nc\nd",
			new:      "a\nb\nx\nd",
			expected: 0.75, // 2*3/8
		},
		{
			name:     "line added",
			old:      "a\nb",
			new:      "a\nb\nc",
			expected: 0.8, // 2*2/5
		},
		{
			name:     "reordered lines keep subsequence",
			old:      "a\nb\nc",
			new:      "c\na\nb",
			expected: 2.0 * 2 / 6, // LCS is a,b
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, diffRatio(tt.old, tt.new), 1e-9)
		})
	}
}
