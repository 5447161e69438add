package kbforge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// ClientInterface defines the main interface for interacting with the KBForge API
type ClientInterface interface {
	// Knowledge base operations
	ListKnowledges(ctx context.Context) ([]Knowledge, error)
	GetKnowledge(ctx context.Context, knowledgeBaseID string) (*Knowledge, error)

	// Knowledge file operations
	ListKnowledgeFiles(ctx context.Context, req *ListKnowledgeFilesRequest) (*ListKnowledgeFilesResponse, error)
	UploadKnowledgeFile(ctx context.Context, req *UploadKnowledgeFileRequest) (*UploadKnowledgeFileResponse, error)
	DeleteKnowledgeFile(ctx context.Context, req *DeleteKnowledgeFileRequest) (*DeleteKnowledgeFileResponse, error)
}

// Client provides a high-level interface for interacting with the KBForge API
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new KBForge client with the given options
func NewClient(options ...ClientOption) *Client {
	config := DefaultConfig()

	for _, option := range options {
		option(config)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// ListKnowledges retrieves all knowledge bases visible to the caller
func (c *Client) ListKnowledges(ctx context.Context) ([]Knowledge, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/knowledge/list", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge bases: %w", err)
	}

	var result struct {
		Data []Knowledge `json:"data"`
	}
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process knowledge list response: %w", err)
	}

	return result.Data, nil
}

// GetKnowledge retrieves a single knowledge base by ID
func (c *Client) GetKnowledge(ctx context.Context, knowledgeBaseID string) (*Knowledge, error) {
	if knowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base ID is required")
	}

	path := fmt.Sprintf("/api/v1/knowledge/%s", knowledgeBaseID)
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get knowledge base: %w", err)
	}

	var result struct {
		Data Knowledge `json:"data"`
	}
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process knowledge response: %w", err)
	}

	return &result.Data, nil
}

// ListKnowledgeFiles retrieves one page of a knowledge base's files along with
// their server-side embedding status
func (c *Client) ListKnowledgeFiles(ctx context.Context, req *ListKnowledgeFilesRequest) (*ListKnowledgeFilesResponse, error) {
	if req.KnowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base ID is required")
	}

	query := url.Values{}
	query.Set("knowledge_base_id", req.KnowledgeBaseID)
	if req.Page > 0 {
		query.Set("page", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(req.PageSize))
	}

	path := "/api/v1/knowledge/files?" + query.Encode()
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge files: %w", err)
	}

	var result ListKnowledgeFilesResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process knowledge files response: %w", err)
	}

	return &result, nil
}

// UploadKnowledgeFile uploads a single file into a knowledge base as
// multipart/form-data. The server answers with an application code; anything
// other than 200 is reported as an *Error.
func (c *Client) UploadKnowledgeFile(ctx context.Context, req *UploadKnowledgeFileRequest) (*UploadKnowledgeFileResponse, error) {
	if req.KnowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base ID is required")
	}
	if req.FileName == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if req.Reader == nil {
		return nil, fmt.Errorf("reader is required")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("knowledge_base_id", req.KnowledgeBaseID); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, req.FileName))
	if req.ContentType != "" {
		header.Set("Content-Type", req.ContentType)
	}

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}

	written, err := io.Copy(part, req.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read input data: %w", err)
	}

	if req.TotalSize > 0 && written != req.TotalSize {
		return nil, fmt.Errorf("actual size (%d) doesn't match expected size (%d)", written, req.TotalSize)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	totalBody := int64(body.Len())
	reader := &progressReader{
		reader: bytes.NewReader(body.Bytes()),
		total:  totalBody,
		fn:     req.ProgressFn,
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/api/v1/knowledge/upload", reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.ContentLength = totalBody
	c.applyAuth(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute upload request: %w", err)
	}

	var result UploadKnowledgeFileResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process upload response: %w", err)
	}

	return &result, nil
}

// DeleteKnowledgeFile deletes a file from a knowledge base
func (c *Client) DeleteKnowledgeFile(ctx context.Context, req *DeleteKnowledgeFileRequest) (*DeleteKnowledgeFileResponse, error) {
	if req.KnowledgeBaseID == "" {
		return nil, fmt.Errorf("knowledge base ID is required")
	}
	if req.FileID == "" {
		return nil, fmt.Errorf("file ID is required")
	}

	query := url.Values{}
	query.Set("knowledge_base_id", req.KnowledgeBaseID)

	path := fmt.Sprintf("/api/v1/knowledge/files/%s?%s", req.FileID, query.Encode())
	resp, err := c.doRequest(ctx, "DELETE", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to delete knowledge file: %w", err)
	}

	var result DeleteKnowledgeFileResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to process delete file response: %w", err)
	}

	return &result, nil
}

// doRequest performs an HTTP request with retry logic and proper error handling
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	return c.doRequestWithHeaders(ctx, method, path, body, nil)
}

// doRequestWithHeaders performs an HTTP request with custom headers
func (c *Client) doRequestWithHeaders(ctx context.Context, method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var bodyBytes []byte
	var requestBody io.Reader

	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		requestBody = bytes.NewBuffer(bodyBytes)
	}

	url := c.config.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
			// Reset body reader for retry
			if bodyBytes != nil {
				requestBody = bytes.NewBuffer(bodyBytes)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		for key, value := range c.config.DefaultHeaders {
			req.Header.Set(key, value)
		}

		for key, value := range headers {
			req.Header.Set(key, value)
		}

		c.applyAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// Server errors might be transient
		if resp.StatusCode >= 500 {
			log.Error().
				Int("status_code", resp.StatusCode).
				Str("path", path).
				Str("request_id", resp.Header.Get("X-Request-ID")).
				Msg("server error")

			resp.Body.Close()
			lastErr = &Error{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("server error: %d", resp.StatusCode),
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.config.RetryAttempts, lastErr)
}

func (c *Client) applyAuth(req *http.Request) {
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
}

// handleResponse processes the HTTP response, checks the application code in
// the envelope, and unmarshals the body into result if successful
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResponse struct {
			Msg   string `json:"msg"`
			Error string `json:"error"`
		}

		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if json.Unmarshal(body, &errorResponse) == nil {
			if errorResponse.Msg != "" {
				message = errorResponse.Msg
			} else if errorResponse.Error != "" {
				message = errorResponse.Error
			}
		}

		return &Error{
			StatusCode: resp.StatusCode,
			Message:    message,
			Body:       string(body),
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
	}

	// The API wraps results in a {code, msg} envelope where code 200 signals
	// acceptance even on HTTP 200.
	var envelope struct {
		Code *int   `json:"code"`
		Msg  string `json:"msg"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Code != nil && *envelope.Code != 200 {
		return &Error{
			StatusCode: resp.StatusCode,
			Code:       *envelope.Code,
			Message:    envelope.Msg,
			Body:       string(body),
			RequestID:  resp.Header.Get("X-Request-ID"),
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// progressReader reports transport progress while the request body is read
type progressReader struct {
	reader   *bytes.Reader
	total    int64
	uploaded int64
	fn       ProgressCallback
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.uploaded += int64(n)
		if r.fn != nil && r.total > 0 {
			percent := float64(r.uploaded) / float64(r.total) * 100
			r.fn(r.uploaded, r.total, percent)
		}
	}
	return n, err
}
