package managers

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/kbforge/kbforge/pkg/clients/kbforge"
	"github.com/kbforge/kbforge/pkg/domain"
)

// PollerStarter begins watching server-side ingestion after a successful
// batch. Start reports whether a new session actually began.
type PollerStarter interface {
	Start(ctx context.Context) bool
}

// UploadCoordinator validates and transmits a bounded batch of files for one
// knowledge base, sequentially, surfacing per-file and aggregate outcomes.
// One coordinator is owned per open knowledge-base view.
type UploadCoordinator struct {
	client      kbforge.ClientInterface
	notifier    domain.Notifier
	poller      PollerStarter
	knowledgeID string

	mu             sync.Mutex
	items          []domain.UploadItem
	succeededNames []string
}

type UploadCoordinatorDependencies struct {
	Client      kbforge.ClientInterface
	Notifier    domain.Notifier
	Poller      PollerStarter
	KnowledgeID string
}

func NewUploadCoordinator(deps UploadCoordinatorDependencies) *UploadCoordinator {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = domain.NopNotifier{}
	}

	return &UploadCoordinator{
		client:      deps.Client,
		notifier:    notifier,
		poller:      deps.Poller,
		knowledgeID: deps.KnowledgeID,
	}
}

// SelectFiles validates candidates and adds the accepted ones to the working
// list with status pending. The working list is capped at MaxBatchSize items;
// candidates beyond the cap are dropped without a user notification.
func (c *UploadCoordinator) SelectFiles(candidates []domain.FileCandidate) []domain.UploadItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := domain.MaxBatchSize - len(c.items)
	if room < 0 {
		room = 0
	}

	if len(candidates) > room {
		log.Debug().
			Int("offered", len(candidates)).
			Int("accepted", room).
			Msg("batch cap reached, dropping excess candidates")
		candidates = candidates[:room]
	}

	accepted := make([]domain.UploadItem, 0, len(candidates))

	for _, candidate := range candidates {
		if candidate.SizeBytes > domain.MaxFileSizeBytes {
			c.notifier.Errorf("%s exceeds the size limit (%s)", candidate.Name, humanize.IBytes(domain.MaxFileSizeBytes))
			continue
		}

		contentType := resolveContentType(candidate)
		if !domain.IsAllowedContentType(contentType) {
			c.notifier.Errorf("%s has an unsupported file type, allowed: PDF, DOC, DOCX, TXT", candidate.Name)
			continue
		}

		item := domain.UploadItem{
			ID:          xid.New().String(),
			Name:        candidate.Name,
			Path:        candidate.Path,
			SizeBytes:   candidate.SizeBytes,
			ContentType: contentType,
			Status:      domain.UploadItemStatus_Pending,
		}

		c.items = append(c.items, item)
		accepted = append(accepted, item)
	}

	return accepted
}

// UploadBatch uploads the working list sequentially: each file fully resolves
// before the next request is issued, and one file's failure never aborts the
// rest of the batch. With at least one success the working list is cleared and
// the ingestion poller is started; with none it is left intact for a retry.
func (c *UploadCoordinator) UploadBatch(ctx context.Context) (domain.BatchResult, error) {
	if c.knowledgeID == "" {
		c.notifier.Warnf("select a knowledge base before uploading")
		return domain.BatchResult{}, domain.ErrNoKnowledgeSelected
	}

	c.mu.Lock()
	batch := make([]domain.UploadItem, len(c.items))
	copy(batch, c.items)
	c.mu.Unlock()

	result := domain.BatchResult{TotalCount: len(batch)}

	for i := range batch {
		item := &batch[i]

		c.setItemStatus(item.ID, domain.UploadItemStatus_Uploading, "")

		if err := c.uploadOne(ctx, item); err != nil {
			reason := classifyUploadError(err)
			c.setItemError(item.ID, reason)
			c.notifier.Errorf("failed to upload %s: %s", item.Name, reason)

			log.Warn().
				Err(err).
				Str("file", item.Name).
				Str("knowledge_id", c.knowledgeID).
				Msg("file upload failed")
			continue
		}

		c.setItemStatus(item.ID, domain.UploadItemStatus_Success, "")
		result.SuccessCount++
		result.SucceededNames = append(result.SucceededNames, item.Name)
	}

	if result.SuccessCount > 0 {
		c.mu.Lock()
		c.items = nil
		c.succeededNames = result.SucceededNames
		c.mu.Unlock()

		if c.poller != nil {
			c.poller.Start(ctx)
		}
	}

	return result, nil
}

func (c *UploadCoordinator) uploadOne(ctx context.Context, item *domain.UploadItem) error {
	file, err := os.Open(item.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = c.client.UploadKnowledgeFile(ctx, &kbforge.UploadKnowledgeFileRequest{
		KnowledgeBaseID: c.knowledgeID,
		FileName:        item.Name,
		ContentType:     item.ContentType,
		TotalSize:       item.SizeBytes,
		Reader:          file,
		ProgressFn: func(uploaded, total int64, percent float64) {
			c.setItemProgress(item.ID, int(percent))
		},
	})

	return err
}

// RemoveItem removes a pending item from the working list, user-initiated.
// Items already uploading or resolved stay until the batch completes.
func (c *UploadCoordinator) RemoveItem(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.ID == id && item.Status == domain.UploadItemStatus_Pending {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}

	return false
}

// Clear empties the working list.
func (c *UploadCoordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
}

// Items returns a snapshot of the working list.
func (c *UploadCoordinator) Items() []domain.UploadItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]domain.UploadItem, len(c.items))
	copy(items, c.items)

	return items
}

// SucceededNames returns the names recorded by the last batch that had at
// least one success, for highlighting in listings.
func (c *UploadCoordinator) SucceededNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, len(c.succeededNames))
	copy(names, c.succeededNames)

	return names
}

func (c *UploadCoordinator) setItemStatus(id string, status domain.UploadItemStatus, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Status = status
			c.items[i].Err = reason
			return
		}
	}
}

func (c *UploadCoordinator) setItemError(id string, reason string) {
	c.setItemStatus(id, domain.UploadItemStatus_Error, reason)
}

func (c *UploadCoordinator) setItemProgress(id string, percent int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Progress = percent
			return
		}
	}
}

var extensionContentTypes = map[string]string{
	".pdf":  domain.ContentTypePDF,
	".doc":  domain.ContentTypeDoc,
	".docx": domain.ContentTypeDocx,
	".txt":  domain.ContentTypePlain,
}

// resolveContentType prefers an explicit content type, then content sniffing
// when the file is readable, then the extension.
func resolveContentType(candidate domain.FileCandidate) string {
	if candidate.ContentType != "" {
		return normalizeContentType(candidate.ContentType)
	}

	if candidate.Path != "" {
		if detected, err := mimetype.DetectFile(candidate.Path); err == nil {
			return normalizeContentType(detected.String())
		}
	}

	return extensionContentTypes[strings.ToLower(filepath.Ext(candidate.Name))]
}

func normalizeContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}

// classifyUploadError maps an upload failure to the short human-readable
// reason shown to the user: timeouts are named, server rejections keep the
// server's message, everything else is a generic network error.
func classifyUploadError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out"
	}

	if apiErr, ok := kbforge.IsKBForgeError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Error()
	}

	if os.IsNotExist(err) {
		return "file not found"
	}

	return "network error"
}
