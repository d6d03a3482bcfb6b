package service

import (
	"math"

	"github.com/lexgraph/lexgraph/internal/domain"
)

// CosineSimilarity computes the cosine similarity of two vectors.
//
// Nil or empty inputs are treated as "no similarity" and yield 0.0 with no
// error so that callers comparing against unembedded chunks degrade quietly.
// A length mismatch between two non-empty vectors is a real caller bug and
// fails with a validation error.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	if len(a) != len(b) {
		return 0, domain.ErrVectorLengthMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}
