package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// normalizeText cleans raw extracted text: control characters are
// stripped, runs of spaces and tabs collapse to one space, trailing
// whitespace is trimmed per line, and runs of blank lines collapse to
// a single paragraph boundary.
func normalizeText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	blankRun := 0
	for _, line := range strings.Split(raw, "\n") {
		line = collapseSpaces(stripControl(line))
		if line == "" {
			blankRun++
			continue
		}
		if b.Len() > 0 {
			if blankRun > 0 {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(line)
		blankRun = 0
	}
	return b.String()
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// hashContent returns the hex SHA-256 digest of normalised content.
// It is a pure function of the content: identical text always yields
// the same hash.
func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
