package domain

import "context"

// ListFilesParams selects one page of a knowledge base's files.
type ListFilesParams struct {
	KnowledgeID string
	Page        int
	PageSize    int
}

// ListFilesResult is one page of files plus the server-side total.
type ListFilesResult struct {
	Files []KnowledgeFile
	Total int64
}

type KnowledgeManager interface {
	ListKnowledges(ctx context.Context) ([]Knowledge, error)
	ListFiles(ctx context.Context, params ListFilesParams) (ListFilesResult, error)
	DeleteFile(ctx context.Context, knowledgeID string, fileID string) error
}
