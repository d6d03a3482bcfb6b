package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/lexgraph/lexgraph/internal/domain"
	"github.com/lexgraph/lexgraph/internal/embedding"
)

// ChunkRepository persists chunks and their embeddings and serves vector
// nearest-neighbor queries.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

const chunkColumns = `id, document_id, chunk_index, content, chunk_size, start_pos, end_pos, embedding::text, metadata, created_at, updated_at`

// ReplaceChunks deletes all existing chunks for a document and inserts the
// new set inside one transaction. The transaction also serializes concurrent
// re-processing of the same document, so a reader never observes a partially
// replaced chunk set.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, documentID string, chunks []*domain.Chunk) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageError("failed to begin chunk replacement", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return storageError("failed to delete existing chunks", err)
	}

	now := time.Now().UTC()
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		updatedAt := c.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = createdAt
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO chunks
				(id, document_id, chunk_index, content, chunk_size, start_pos, end_pos, embedding, metadata, created_at, updated_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			c.ID,
			c.DocumentID,
			c.ChunkIndex,
			c.Content,
			c.ChunkSize,
			c.StartPos,
			c.EndPos,
			vectorParam(c.Embedding),
			nullableString(c.Metadata),
			createdAt,
			updatedAt,
		); err != nil {
			return storageError("failed to insert chunk", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError("failed to commit chunk replacement", err)
	}
	return nil
}

// ListByDocument returns a document's chunks ordered by chunk index
func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE document_id = $1 ORDER BY chunk_index ASC`,
		documentID,
	)
	if err != nil {
		return nil, storageError("failed to list chunks", err)
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

// ListWithoutEmbedding returns a document's chunks whose embedding has not
// been generated yet, supporting incremental backfill.
func (r *ChunkRepository) ListWithoutEmbedding(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+chunkColumns+` FROM chunks
		 WHERE document_id = $1 AND embedding IS NULL
		 ORDER BY chunk_index ASC`,
		documentID,
	)
	if err != nil {
		return nil, storageError("failed to list chunks without embedding", err)
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

// ListDocumentIDsWithMissingEmbeddings returns the documents that still have
// unembedded chunks, oldest first.
func (r *ChunkRepository) ListDocumentIDsWithMissingEmbeddings(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT document_id FROM chunks
		 WHERE embedding IS NULL
		 GROUP BY document_id
		 ORDER BY MIN(created_at) ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, storageError("failed to list documents with missing embeddings", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageError("failed to scan document id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to read document ids", err)
	}
	return ids, nil
}

// UpdateEmbedding stores a generated embedding on a single chunk
func (r *ChunkRepository) UpdateEmbedding(ctx context.Context, chunkID string, vector []float32) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE chunks SET embedding = $1, updated_at = $2 WHERE id = $3`,
		vectorParam(vector), time.Now().UTC(), chunkID,
	)
	if err != nil {
		return storageError("failed to update chunk embedding", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrChunkNotFound
	}
	return nil
}

// CountWithEmbedding returns the number of chunks that carry an embedding
func (r *ChunkRepository) CountWithEmbedding(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks WHERE embedding IS NOT NULL`).Scan(&count)
	if err != nil {
		return 0, storageError("failed to count embedded chunks", err)
	}
	return count, nil
}

// CountTotal returns the total number of chunks in the corpus
func (r *ChunkRepository) CountTotal(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	if err != nil {
		return 0, storageError("failed to count chunks", err)
	}
	return count, nil
}

// CountByDocument returns total and embedded chunk counts for one document
func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID string) (total, embedded int64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(embedding) FROM chunks WHERE document_id = $1`,
		documentID,
	).Scan(&total, &embedded)
	if err != nil {
		return 0, 0, storageError("failed to count document chunks", err)
	}
	return total, embedded, nil
}

// NearestNeighbors returns up to limit chunks ordered by ascending L2
// distance between their embedding and the query vector. Chunks without an
// embedding never match. Exact-distance ties break deterministically on
// chunk id. An empty corpus yields an empty result, not an error.
func (r *ChunkRepository) NearestNeighbors(ctx context.Context, vector []float32, limit int) ([]*domain.Chunk, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+chunkColumns+` FROM chunks
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <-> $1, id
		 LIMIT $2`,
		pgvector.NewVector(vector), limit,
	)
	if err != nil {
		return nil, storageError("failed to run nearest-neighbor query", err)
	}
	defer rows.Close()

	chunks, err := scanChunkRows(rows)
	if err != nil {
		return nil, err
	}
	if chunks == nil {
		chunks = []*domain.Chunk{}
	}
	return chunks, nil
}

// vectorParam maps an optional embedding to a pgvector parameter, with NULL
// for absent embeddings.
func vectorParam(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

func scanChunkRows(rows pgx.Rows) ([]*domain.Chunk, error) {
	var results []*domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var embeddingText, metadata *string
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &c.Content, &c.ChunkSize,
			&c.StartPos, &c.EndPos, &embeddingText, &metadata, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, storageError("failed to scan chunk row", err)
		}
		if embeddingText != nil {
			vec, err := embedding.DecodeVector(*embeddingText)
			if err != nil {
				return nil, err
			}
			c.Embedding = vec
		}
		if metadata != nil {
			c.Metadata = *metadata
		}
		results = append(results, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to read chunk rows", err)
	}
	return results, nil
}
