package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexgraph/lexgraph/internal/domain"
)

// RelationshipRepository persists derived semantic links between chunks.
// Rows referencing a chunk disappear with it via foreign-key cascade.
type RelationshipRepository struct {
	db dbtx
}

func NewRelationshipRepository(pool *pgxpool.Pool) *RelationshipRepository {
	return &RelationshipRepository{db: pool}
}

func (r *RelationshipRepository) Create(ctx context.Context, rel *domain.ChunkRelationship) error {
	if err := domain.ValidateChunkRelationship(rel); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid chunk relationship", err)
	}
	createdAt := rel.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO chunk_relationships (id, source_chunk_id, target_chunk_id, relationship_type, similarity, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rel.ID, rel.SourceChunkID, rel.TargetChunkID, rel.Type, rel.Similarity, nullableString(rel.Metadata), createdAt,
	)
	if err != nil {
		return storageError("failed to insert chunk relationship", err)
	}
	return nil
}

// ListByChunk returns relationships where the chunk is source or target
func (r *RelationshipRepository) ListByChunk(ctx context.Context, chunkID string) ([]*domain.ChunkRelationship, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, source_chunk_id, target_chunk_id, relationship_type, similarity, metadata, created_at
		 FROM chunk_relationships
		 WHERE source_chunk_id = $1 OR target_chunk_id = $1
		 ORDER BY created_at DESC`,
		chunkID,
	)
	if err != nil {
		return nil, storageError("failed to list chunk relationships", err)
	}
	defer rows.Close()

	var results []*domain.ChunkRelationship
	for rows.Next() {
		var rel domain.ChunkRelationship
		var metadata *string
		if err := rows.Scan(&rel.ID, &rel.SourceChunkID, &rel.TargetChunkID, &rel.Type, &rel.Similarity, &metadata, &rel.CreatedAt); err != nil {
			return nil, storageError("failed to scan relationship row", err)
		}
		if metadata != nil {
			rel.Metadata = *metadata
		}
		results = append(results, &rel)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to read relationship rows", err)
	}
	return results, nil
}

func (r *RelationshipRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM chunk_relationships WHERE id = $1`, id)
	if err != nil {
		return storageError("failed to delete chunk relationship", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.NewDomainError(domain.ErrCodeNotFound, "chunk relationship not found")
	}
	return nil
}
