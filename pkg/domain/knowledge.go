package domain

import "time"

// EmbeddingStatus is the server-reported ingestion state of a knowledge file.
// Completed and failed are terminal; the server never transitions a file back
// to pending or processing.
type EmbeddingStatus string

const (
	EmbeddingStatus_Pending    EmbeddingStatus = "pending"
	EmbeddingStatus_Processing EmbeddingStatus = "processing"
	EmbeddingStatus_Completed  EmbeddingStatus = "completed"
	EmbeddingStatus_Failed     EmbeddingStatus = "failed"
)

// IsTerminal reports whether the status is one the server never leaves.
func (s EmbeddingStatus) IsTerminal() bool {
	return s == EmbeddingStatus_Completed || s == EmbeddingStatus_Failed
}

type Knowledge struct {
	ID          string
	Name        string
	Description string
	FileCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// KnowledgeFile is a server-owned record; the client only reads it.
type KnowledgeFile struct {
	ID              string
	KnowledgeID     string
	Name            string
	FileSizeBytes   int64
	FileType        string
	CreatedAt       time.Time
	EmbeddingStatus EmbeddingStatus

	// EmbeddingError is set only when EmbeddingStatus is failed.
	EmbeddingError string
}

// AllTerminal reports whether every file has reached a terminal embedding
// status. An empty list counts as terminal.
func AllTerminal(files []KnowledgeFile) bool {
	for _, f := range files {
		if !f.EmbeddingStatus.IsTerminal() {
			return false
		}
	}
	return true
}
