package domain

import (
	"fmt"
	"time"
)

// Chunk is a contiguous slice of a document's extracted text, sized for
// embedding. Chunks are exclusively owned by their document: replacing a
// document's chunk set or deleting the document destroys them.
type Chunk struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Content    string
	ChunkSize  int
	StartPos   int
	EndPos     int
	Embedding  []float32
	Metadata   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasEmbedding reports whether an embedding has been generated for the chunk
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// ValidateChunk validates a Chunk instance
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}
	if c.DocumentID == "" {
		return fmt.Errorf("chunk DocumentID is required")
	}
	if c.ChunkIndex < 0 {
		return fmt.Errorf("chunk ChunkIndex must not be negative")
	}
	if c.Content == "" {
		return fmt.Errorf("chunk Content is required")
	}
	if c.StartPos >= c.EndPos {
		return fmt.Errorf("chunk StartPos must be less than EndPos")
	}
	return nil
}
