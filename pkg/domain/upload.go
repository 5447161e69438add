package domain

// Upload limits enforced locally before any network activity.
const (
	MaxBatchSize     = 5
	MaxFileSizeBytes = 10 * 1024 * 1024
)

// Content types accepted for knowledge ingestion.
const (
	ContentTypePDF   = "application/pdf"
	ContentTypeDoc   = "application/msword"
	ContentTypeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePlain = "text/plain"
)

var allowedContentTypes = map[string]struct{}{
	ContentTypePDF:   {},
	ContentTypeDoc:   {},
	ContentTypeDocx:  {},
	ContentTypePlain: {},
}

// IsAllowedContentType reports whether a content type may be uploaded.
func IsAllowedContentType(contentType string) bool {
	_, ok := allowedContentTypes[contentType]
	return ok
}

// UploadItemStatus is the local lifecycle state of a selected file.
type UploadItemStatus string

const (
	UploadItemStatus_Pending   UploadItemStatus = "pending"
	UploadItemStatus_Uploading UploadItemStatus = "uploading"
	UploadItemStatus_Success   UploadItemStatus = "success"
	UploadItemStatus_Error     UploadItemStatus = "error"
)

// FileCandidate is a file the user offered for upload, before validation.
type FileCandidate struct {
	Name        string
	Path        string
	SizeBytes   int64
	ContentType string
}

// UploadItem is a validated candidate tracked through its upload.
type UploadItem struct {
	ID          string
	Name        string
	Path        string
	SizeBytes   int64
	ContentType string
	Status      UploadItemStatus

	// Progress is a 0-100 percentage, meaningful only while uploading.
	Progress int

	// Err records the failure reason when Status is error.
	Err string
}

// BatchResult aggregates the outcome of one upload batch.
type BatchResult struct {
	SuccessCount   int
	TotalCount     int
	SucceededNames []string
}
