package managers

import (
	"context"
	"fmt"

	"github.com/kbforge/kbforge/pkg/clients/kbforge"
	"github.com/kbforge/kbforge/pkg/domain"
)

type knowledgeManager struct {
	client kbforge.ClientInterface
}

type KnowledgeManagerDependencies struct {
	Client kbforge.ClientInterface
}

func NewKnowledgeManager(deps KnowledgeManagerDependencies) domain.KnowledgeManager {
	return &knowledgeManager{
		client: deps.Client,
	}
}

func (m *knowledgeManager) ListKnowledges(ctx context.Context) ([]domain.Knowledge, error) {
	knowledges, err := m.client.ListKnowledges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge bases: %w", err)
	}

	domainKnowledges := make([]domain.Knowledge, 0, len(knowledges))

	for _, k := range knowledges {
		domainKnowledges = append(domainKnowledges, domain.Knowledge{
			ID:          k.ID,
			Name:        k.Name,
			Description: k.Description,
			FileCount:   k.FileCount,
			CreatedAt:   k.CreatedAt,
			UpdatedAt:   k.UpdatedAt,
		})
	}

	return domainKnowledges, nil
}

func (m *knowledgeManager) ListFiles(ctx context.Context, params domain.ListFilesParams) (domain.ListFilesResult, error) {
	if params.KnowledgeID == "" {
		return domain.ListFilesResult{}, fmt.Errorf("knowledge ID cannot be empty")
	}

	response, err := m.client.ListKnowledgeFiles(ctx, &kbforge.ListKnowledgeFilesRequest{
		KnowledgeBaseID: params.KnowledgeID,
		Page:            params.Page,
		PageSize:        params.PageSize,
	})
	if err != nil {
		return domain.ListFilesResult{}, fmt.Errorf("failed to list files for %s: %w", params.KnowledgeID, err)
	}

	files := make([]domain.KnowledgeFile, 0, len(response.Files))

	for _, f := range response.Files {
		files = append(files, domain.KnowledgeFile{
			ID:              f.ID,
			KnowledgeID:     f.KnowledgeBaseID,
			Name:            f.Name,
			FileSizeBytes:   f.FileSize,
			FileType:        f.FileType,
			CreatedAt:       f.CreatedAt,
			EmbeddingStatus: domain.EmbeddingStatus(f.EmbeddingStatus),
			EmbeddingError:  f.EmbeddingError,
		})
	}

	return domain.ListFilesResult{
		Files: files,
		Total: response.Total,
	}, nil
}

func (m *knowledgeManager) DeleteFile(ctx context.Context, knowledgeID string, fileID string) error {
	if knowledgeID == "" {
		return fmt.Errorf("knowledge ID cannot be empty")
	}

	if fileID == "" {
		return fmt.Errorf("file ID cannot be empty")
	}

	_, err := m.client.DeleteKnowledgeFile(ctx, &kbforge.DeleteKnowledgeFileRequest{
		KnowledgeBaseID: knowledgeID,
		FileID:          fileID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}

	return nil
}
