package domain

import (
	"fmt"
	"time"
)

// ProcessingStatus represents the pipeline stage a document has reached
type ProcessingStatus string

const (
	StatusUploaded            ProcessingStatus = "uploaded"
	StatusTextExtracted       ProcessingStatus = "text_extracted"
	StatusChunked             ProcessingStatus = "chunked"
	StatusEmbeddingsGenerated ProcessingStatus = "embeddings_generated"
	StatusSummarized          ProcessingStatus = "summarized"
	StatusCompleted           ProcessingStatus = "completed"
	StatusFailed              ProcessingStatus = "failed"
)

// statusRank orders the forward pipeline stages. Failed is terminal and
// reachable from anywhere, so it carries no rank.
var statusRank = map[ProcessingStatus]int{
	StatusUploaded:            0,
	StatusTextExtracted:       1,
	StatusChunked:             2,
	StatusEmbeddingsGenerated: 3,
	StatusSummarized:          4,
	StatusCompleted:           5,
}

// Document represents an ingested document and its processing state
type Document struct {
	ID            string
	Filename      string
	ContentType   string
	SizeBytes     int64
	ExtractedText *string
	Summary       *string
	Status        ProcessingStatus
	UploadedAt    time.Time
	UpdatedAt     time.Time
}

// NewDocument creates a Document in the uploaded state
func NewDocument(id, filename, contentType string, sizeBytes int64, now time.Time) *Document {
	return &Document{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		Status:      StatusUploaded,
		UploadedAt:  now,
		UpdatedAt:   now,
	}
}

// CanTransition reports whether the status may move from current to next.
// Status only advances forward through the pipeline; failed is reachable
// from any non-failed state and is terminal.
func CanTransition(current, next ProcessingStatus) bool {
	if current == StatusFailed {
		return false
	}
	if next == StatusFailed {
		return true
	}
	currentRank, ok := statusRank[current]
	if !ok {
		return false
	}
	nextRank, ok := statusRank[next]
	if !ok {
		return false
	}
	return nextRank > currentRank
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}
	if d.ContentType == "" {
		return fmt.Errorf("document ContentType is required")
	}
	if !isValidProcessingStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}
	return nil
}

func isValidProcessingStatus(s ProcessingStatus) bool {
	switch s {
	case StatusUploaded, StatusTextExtracted, StatusChunked,
		StatusEmbeddingsGenerated, StatusSummarized, StatusCompleted, StatusFailed:
		return true
	}
	return false
}
