package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedContentType(t *testing.T) {
	tests := []struct {
		contentType string
		allowed     bool
	}{
		{ContentTypePDF, true},
		{ContentTypeDoc, true},
		{ContentTypeDocx, true},
		{ContentTypePlain, true},
		{"image/png", false},
		{"application/zip", false},
		{"text/plain; charset=utf-8", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsAllowedContentType(tt.contentType))
		})
	}
}
