// Package kbforge provides a Go SDK for interacting with the KBForge API.
// This package is designed for community use and has no internal dependencies.
package kbforge

import (
	"io"
	"time"
)

// Knowledge represents a knowledge base
type Knowledge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FileCount   int64     `json:"file_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KnowledgeFile represents a file the server is ingesting into a knowledge base
type KnowledgeFile struct {
	ID              string    `json:"id"`
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	Name            string    `json:"name"`
	FileSize        int64     `json:"file_size"`
	FileType        string    `json:"file_type"`
	CreatedAt       time.Time `json:"created_at"`
	EmbeddingStatus string    `json:"embedding_status"`
	EmbeddingError  string    `json:"embedding_error,omitempty"`
}

// ProgressCallback is called during upload progress
type ProgressCallback func(uploaded, total int64, percent float64)

// UploadKnowledgeFileRequest represents the request to upload a file into a knowledge base
type UploadKnowledgeFileRequest struct {
	KnowledgeBaseID string           `json:"knowledge_base_id"`
	FileName        string           `json:"file_name"`
	ContentType     string           `json:"content_type"`
	TotalSize       int64            `json:"total_size"`
	Reader          io.Reader        `json:"-"`
	ProgressFn      ProgressCallback `json:"-"`
}

// UploadKnowledgeFileResponse represents the response from uploading a file
type UploadKnowledgeFileResponse struct {
	Msg string `json:"msg"`
}

// ListKnowledgeFilesRequest represents the request to list knowledge files
type ListKnowledgeFilesRequest struct {
	KnowledgeBaseID string `json:"knowledge_base_id"`
	Page            int    `json:"page"`
	PageSize        int    `json:"page_size"`
}

// ListKnowledgeFilesResponse represents one page of knowledge files
type ListKnowledgeFilesResponse struct {
	Files []KnowledgeFile `json:"data"`
	Total int64           `json:"total"`
}

// DeleteKnowledgeFileRequest represents the request to delete a knowledge file
type DeleteKnowledgeFileRequest struct {
	KnowledgeBaseID string `json:"knowledge_base_id"`
	FileID          string `json:"file_id"`
}

// DeleteKnowledgeFileResponse represents the response from deleting a knowledge file
type DeleteKnowledgeFileResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}
