package domain

import "time"

// RawFile represents a file handed to the ingestion pipeline before
// extraction.
type RawFile struct {
	// Path is the file location on disk.
	Path string

	// MIMEType is the declared content type (e.g. "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Size is the file size in bytes.
	Size int64

	// ModTime is the file's last modification time.
	ModTime time.Time

	// KnowledgeBaseID is the knowledge base the file belongs to.
	KnowledgeBaseID string

	// FolderID optionally groups the file within the knowledge base.
	FolderID string
}
