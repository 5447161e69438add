package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   EmbeddingStatus
		terminal bool
	}{
		{EmbeddingStatus_Pending, false},
		{EmbeddingStatus_Processing, false},
		{EmbeddingStatus_Completed, true},
		{EmbeddingStatus_Failed, true},
		{EmbeddingStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestAllTerminal(t *testing.T) {
	tests := []struct {
		name     string
		statuses []EmbeddingStatus
		want     bool
	}{
		{
			name:     "empty list counts as terminal",
			statuses: nil,
			want:     true,
		},
		{
			name:     "all completed",
			statuses: []EmbeddingStatus{EmbeddingStatus_Completed, EmbeddingStatus_Completed},
			want:     true,
		},
		{
			name:     "failures are terminal too",
			statuses: []EmbeddingStatus{EmbeddingStatus_Completed, EmbeddingStatus_Failed},
			want:     true,
		},
		{
			name:     "one file still processing",
			statuses: []EmbeddingStatus{EmbeddingStatus_Completed, EmbeddingStatus_Processing},
			want:     false,
		},
		{
			name:     "one file still pending",
			statuses: []EmbeddingStatus{EmbeddingStatus_Failed, EmbeddingStatus_Pending},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := make([]KnowledgeFile, 0, len(tt.statuses))
			for _, status := range tt.statuses {
				files = append(files, KnowledgeFile{EmbeddingStatus: status})
			}

			assert.Equal(t, tt.want, AllTerminal(files))
		})
	}
}
