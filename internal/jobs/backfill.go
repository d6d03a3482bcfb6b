package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/lexgraph/lexgraph/internal/domain"
)

// BackfillChunkRepository exposes the chunk queries the backfill needs
type BackfillChunkRepository interface {
	ListDocumentIDsWithMissingEmbeddings(ctx context.Context, limit int) ([]string, error)
	ListWithoutEmbedding(ctx context.Context, documentID string) ([]*domain.Chunk, error)
	UpdateEmbedding(ctx context.Context, chunkID string, vector []float32) error
}

// Embedder generates a vector for one chunk's text
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// DefaultBackfillBatchSize bounds how many documents one pass touches
const DefaultBackfillBatchSize = 10

// BackfillWorker fills in embeddings for chunks that were stored without
// one, typically because the embedding backend was unavailable during
// ingestion. Oldest documents are handled first.
type BackfillWorker struct {
	chunks    BackfillChunkRepository
	embedder  Embedder
	batchSize int
}

func NewBackfillWorker(chunks BackfillChunkRepository, embedder Embedder) *BackfillWorker {
	return &BackfillWorker{
		chunks:    chunks,
		embedder:  embedder,
		batchSize: DefaultBackfillBatchSize,
	}
}

// ProcessPending implements the Processor interface
func (w *BackfillWorker) ProcessPending(ctx context.Context) error {
	documentIDs, err := w.chunks.ListDocumentIDsWithMissingEmbeddings(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to find documents with missing embeddings: %w", err)
	}
	if len(documentIDs) == 0 {
		return nil
	}

	log.Printf("backfilling embeddings for %d documents", len(documentIDs))

	for _, documentID := range documentIDs {
		if err := w.backfillDocument(ctx, documentID); err != nil {
			log.Printf("backfill failed for document %s: %v", documentID, err)
		}
	}
	return nil
}

// backfillDocument embeds every vectorless chunk of one document. A failure
// on one chunk leaves it for the next pass instead of aborting the document.
func (w *BackfillWorker) backfillDocument(ctx context.Context, documentID string) error {
	chunks, err := w.chunks.ListWithoutEmbedding(ctx, documentID)
	if err != nil {
		return err
	}

	var filled int
	for _, chunk := range chunks {
		vector, err := w.embedder.GenerateEmbedding(ctx, chunk.Content)
		if err != nil {
			log.Printf("skipping chunk %s: %v", chunk.ID, err)
			continue
		}
		if err := w.chunks.UpdateEmbedding(ctx, chunk.ID, vector); err != nil {
			return err
		}
		filled++
	}

	if filled > 0 {
		log.Printf("backfilled %d/%d chunks for document %s", filled, len(chunks), documentID)
	}
	return nil
}
