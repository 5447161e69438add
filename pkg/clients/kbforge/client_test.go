package kbforge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string, extra ...ClientOption) *Client {
	options := append([]ClientOption{
		WithBaseURL(serverURL),
		WithAPIKey("test-key"),
		WithRetry(2, time.Millisecond),
	}, extra...)

	return NewClient(options...)
}

func TestUploadKnowledgeFile(t *testing.T) {
	var gotKnowledgeID, gotFileName, gotContentType, gotBody, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/knowledge/upload", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotKnowledgeID = r.FormValue("knowledge_base_id")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		gotFileName = header.Filename
		gotContentType = header.Header.Get("Content-Type")

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		gotBody = string(content)

		fmt.Fprint(w, `{"code":200,"msg":"File uploaded successfully"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var lastPercent float64
	resp, err := client.UploadKnowledgeFile(context.Background(), &UploadKnowledgeFileRequest{
		KnowledgeBaseID: "kb-42",
		FileName:        "notes.txt",
		ContentType:     "text/plain",
		TotalSize:       11,
		Reader:          strings.NewReader("hello world"),
		ProgressFn: func(uploaded, total int64, percent float64) {
			lastPercent = percent
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "File uploaded successfully", resp.Msg)
	assert.Equal(t, "kb-42", gotKnowledgeID)
	assert.Equal(t, "notes.txt", gotFileName)
	assert.Equal(t, "text/plain", gotContentType)
	assert.Equal(t, "hello world", gotBody)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.InDelta(t, 100, lastPercent, 0.01, "progress reaches 100 percent")
}

func TestUploadKnowledgeFile_SizeMismatch(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	_, err := client.UploadKnowledgeFile(context.Background(), &UploadKnowledgeFileRequest{
		KnowledgeBaseID: "kb-42",
		FileName:        "notes.txt",
		TotalSize:       999,
		Reader:          strings.NewReader("short"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "doesn't match expected size")
}

func TestUploadKnowledgeFile_ApplicationCodeRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 but the envelope carries a non-200 application code.
		fmt.Fprint(w, `{"code":500,"msg":"knowledge base is full"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.UploadKnowledgeFile(context.Background(), &UploadKnowledgeFileRequest{
		KnowledgeBaseID: "kb-42",
		FileName:        "notes.txt",
		Reader:          strings.NewReader("hello"),
	})

	require.Error(t, err)
	apiErr, ok := IsKBForgeError(err)
	require.True(t, ok)
	assert.Equal(t, 500, apiErr.Code)
	assert.Equal(t, "knowledge base is full", apiErr.Message)
}

func TestListKnowledgeFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/knowledge/files", r.URL.Path)
		assert.Equal(t, "kb-42", r.URL.Query().Get("knowledge_base_id"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "25", r.URL.Query().Get("page_size"))

		fmt.Fprint(w, `{
			"code": 200,
			"msg": "",
			"data": [
				{"id": "f-1", "name": "a.pdf", "embedding_status": "completed"},
				{"id": "f-2", "name": "b.txt", "embedding_status": "failed", "embedding_error": "parse error"}
			],
			"total": 12
		}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.ListKnowledgeFiles(context.Background(), &ListKnowledgeFilesRequest{
		KnowledgeBaseID: "kb-42",
		Page:            2,
		PageSize:        25,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12), resp.Total)
	require.Len(t, resp.Files, 2)
	assert.Equal(t, "completed", resp.Files[0].EmbeddingStatus)
	assert.Equal(t, "parse error", resp.Files[1].EmbeddingError)
}

func TestListKnowledgeFiles_RequiresKnowledgeBaseID(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	_, err := client.ListKnowledgeFiles(context.Background(), &ListKnowledgeFilesRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge base ID is required")
}

func TestDeleteKnowledgeFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/v1/knowledge/files/f-1", r.URL.Path)
		assert.Equal(t, "kb-42", r.URL.Query().Get("knowledge_base_id"))

		fmt.Fprint(w, `{"code":200,"msg":"deleted","success":true}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.DeleteKnowledgeFile(context.Background(), &DeleteKnowledgeFileRequest{
		KnowledgeBaseID: "kb-42",
		FileID:          "f-1",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestDoRequest_RetriesOnServerError(t *testing.T) {
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"code":200,"data":[{"id":"kb-1","name":"docs"}]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	knowledges, err := client.ListKnowledges(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
	require.Len(t, knowledges, 1)
	assert.Equal(t, "docs", knowledges[0].Name)
}

func TestDoRequest_DoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"msg": "invalid API key"})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.ListKnowledges(context.Background())

	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load(), "4xx responses are not retried")

	apiErr, ok := IsKBForgeError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsAuthError())
	assert.Equal(t, "invalid API key", apiErr.Message)
}

func TestHandleResponse_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"msg":"knowledge base not found"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetKnowledge(context.Background(), "missing")

	require.Error(t, err)
	apiErr, ok := IsKBForgeError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.False(t, apiErr.IsRetryable())
}
