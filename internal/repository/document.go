package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexgraph/lexgraph/internal/domain"
	"github.com/lexgraph/lexgraph/internal/pagination"
)

// DocumentRepository handles persistence of documents and their pipeline state
type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, filename, content_type, size_bytes, extracted_text, summary, status, uploaded_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.Filename, d.ContentType, d.SizeBytes, d.ExtractedText, d.Summary, d.Status, d.UploadedAt, d.UpdatedAt,
	)
	if err != nil {
		return storageError("failed to insert document", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	err := r.db.QueryRow(ctx,
		`SELECT id, filename, content_type, size_bytes, extracted_text, summary, status, uploaded_at, updated_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.ExtractedText, &d.Summary, &d.Status, &d.UploadedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, storageError("failed to load document", err)
	}
	return &d, nil
}

// ListWithCursor pages documents newest-upload first using a keyset cursor
func (r *DocumentRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.Document, string, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, filename, content_type, size_bytes, extracted_text, summary, status, uploaded_at, updated_at
			 FROM documents
			 WHERE (uploaded_at, id) < ($1, $2)
			 ORDER BY uploaded_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, filename, content_type, size_bytes, extracted_text, summary, status, uploaded_at, updated_at
			 FROM documents
			 ORDER BY uploaded_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, "", storageError("failed to list documents", err)
	}
	defer rows.Close()

	docs, err := scanDocumentRows(rows)
	if err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(docs) > limit {
		docs = docs[:limit]
		last := docs[len(docs)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.UploadedAt)
	}
	return docs, nextCursor, nil
}

// UpdateStatus advances a document's pipeline status. Transitions that would
// move backwards are rejected.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanTransition(current.Status, status) {
		return domain.NewDomainError(domain.ErrCodeValidation,
			"illegal status transition from "+string(current.Status)+" to "+string(status))
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return storageError("failed to update document status", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// SetStatus writes a status directly, bypassing the forward-only guard.
// Used by reprocessing, which restarts the lifecycle of a finished or
// failed document.
func (r *DocumentRepository) SetStatus(ctx context.Context, id string, status domain.ProcessingStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return storageError("failed to set document status", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) UpdateExtractedText(ctx context.Context, id, text string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET extracted_text = $1, updated_at = $2 WHERE id = $3`,
		text, time.Now().UTC(), id,
	)
	if err != nil {
		return storageError("failed to update extracted text", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) UpdateSummary(ctx context.Context, id, summary string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET summary = $1, updated_at = $2 WHERE id = $3`,
		summary, time.Now().UTC(), id,
	)
	if err != nil {
		return storageError("failed to update summary", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Delete removes a document; chunks and their relationships go with it via
// foreign-key cascade.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return storageError("failed to delete document", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.Document, error) {
	var results []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.ExtractedText, &d.Summary, &d.Status, &d.UploadedAt, &d.UpdatedAt); err != nil {
			return nil, storageError("failed to scan document row", err)
		}
		results = append(results, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to read document rows", err)
	}
	return results, nil
}

func storageError(message string, err error) error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, message, err)
}
