package domain

import (
	"fmt"
	"time"
)

// RelationshipType tags the semantic link between two chunks
type RelationshipType string

const (
	RelationshipSimilar   RelationshipType = "similar"
	RelationshipTopical   RelationshipType = "topical"
	RelationshipSequence  RelationshipType = "sequence"
	RelationshipReference RelationshipType = "reference"
)

// ChunkRelationship is a derived semantic link between two chunks. The
// pipeline does not produce relationships itself; they are written by
// external analysis and removed whenever a referenced chunk is deleted.
type ChunkRelationship struct {
	ID            string
	SourceChunkID string
	TargetChunkID string
	Type          RelationshipType
	Similarity    float32
	Metadata      string
	CreatedAt     time.Time
}

// ValidateChunkRelationship validates a ChunkRelationship instance
func ValidateChunkRelationship(r *ChunkRelationship) error {
	if r == nil {
		return fmt.Errorf("relationship cannot be nil")
	}
	if r.SourceChunkID == "" {
		return fmt.Errorf("relationship SourceChunkID is required")
	}
	if r.TargetChunkID == "" {
		return fmt.Errorf("relationship TargetChunkID is required")
	}
	if r.SourceChunkID == r.TargetChunkID {
		return fmt.Errorf("relationship cannot reference the same chunk twice")
	}
	if !isValidRelationshipType(r.Type) {
		return fmt.Errorf("relationship Type is invalid: %s", r.Type)
	}
	return nil
}

func isValidRelationshipType(t RelationshipType) bool {
	switch t {
	case RelationshipSimilar, RelationshipTopical, RelationshipSequence, RelationshipReference:
		return true
	}
	return false
}
