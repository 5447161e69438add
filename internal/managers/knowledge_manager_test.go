package managers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbforge/kbforge/pkg/clients/kbforge"
	"github.com/kbforge/kbforge/pkg/domain"
)

type stubClient struct {
	fakeClient

	listFilesResponse *kbforge.ListKnowledgeFilesResponse
	lastListRequest   *kbforge.ListKnowledgeFilesRequest
	lastDeleteRequest *kbforge.DeleteKnowledgeFileRequest
}

func (s *stubClient) ListKnowledgeFiles(ctx context.Context, req *kbforge.ListKnowledgeFilesRequest) (*kbforge.ListKnowledgeFilesResponse, error) {
	s.lastListRequest = req
	if s.listFilesResponse != nil {
		return s.listFilesResponse, nil
	}
	return &kbforge.ListKnowledgeFilesResponse{}, nil
}

func (s *stubClient) DeleteKnowledgeFile(ctx context.Context, req *kbforge.DeleteKnowledgeFileRequest) (*kbforge.DeleteKnowledgeFileResponse, error) {
	s.lastDeleteRequest = req
	return &kbforge.DeleteKnowledgeFileResponse{Success: true}, nil
}

func TestKnowledgeManager_ListFiles(t *testing.T) {
	client := &stubClient{
		listFilesResponse: &kbforge.ListKnowledgeFilesResponse{
			Files: []kbforge.KnowledgeFile{
				{
					ID:              "f-1",
					KnowledgeBaseID: "kb-1",
					Name:            "report.pdf",
					FileSize:        2048,
					FileType:        "application/pdf",
					EmbeddingStatus: "processing",
				},
				{
					ID:              "f-2",
					KnowledgeBaseID: "kb-1",
					Name:            "notes.txt",
					EmbeddingStatus: "failed",
					EmbeddingError:  "unreadable encoding",
				},
			},
			Total: 2,
		},
	}

	manager := NewKnowledgeManager(KnowledgeManagerDependencies{Client: client})

	result, err := manager.ListFiles(context.Background(), domain.ListFilesParams{
		KnowledgeID: "kb-1",
		Page:        1,
		PageSize:    50,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	require.Len(t, result.Files, 2)

	assert.Equal(t, domain.EmbeddingStatus_Processing, result.Files[0].EmbeddingStatus)
	assert.Equal(t, int64(2048), result.Files[0].FileSizeBytes)
	assert.Equal(t, domain.EmbeddingStatus_Failed, result.Files[1].EmbeddingStatus)
	assert.Equal(t, "unreadable encoding", result.Files[1].EmbeddingError)

	require.NotNil(t, client.lastListRequest)
	assert.Equal(t, "kb-1", client.lastListRequest.KnowledgeBaseID)
	assert.Equal(t, 50, client.lastListRequest.PageSize)
}

func TestKnowledgeManager_ListFilesRequiresKnowledgeID(t *testing.T) {
	manager := NewKnowledgeManager(KnowledgeManagerDependencies{Client: &stubClient{}})

	_, err := manager.ListFiles(context.Background(), domain.ListFilesParams{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge ID cannot be empty")
}

func TestKnowledgeManager_DeleteFile(t *testing.T) {
	client := &stubClient{}
	manager := NewKnowledgeManager(KnowledgeManagerDependencies{Client: client})

	require.NoError(t, manager.DeleteFile(context.Background(), "kb-1", "f-1"))

	require.NotNil(t, client.lastDeleteRequest)
	assert.Equal(t, "kb-1", client.lastDeleteRequest.KnowledgeBaseID)
	assert.Equal(t, "f-1", client.lastDeleteRequest.FileID)

	require.Error(t, manager.DeleteFile(context.Background(), "", "f-1"))
	require.Error(t, manager.DeleteFile(context.Background(), "kb-1", ""))
}
