//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgraph/lexgraph/internal/domain"
	"github.com/lexgraph/lexgraph/internal/pagination"
	"github.com/lexgraph/lexgraph/internal/testutil"
)

func newStoredDocument(ctx context.Context, t *testing.T, repo *DocumentRepository) *domain.Document {
	t.Helper()
	doc := domain.NewDocument(uuid.NewString(), "report.txt", "text/plain", 42,
		time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, doc))
	return doc
}

func TestDocumentRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)
	doc := newStoredDocument(ctx, t, repo)

	retrieved, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, retrieved.ID)
	assert.Equal(t, "report.txt", retrieved.Filename)
	assert.Equal(t, domain.StatusUploaded, retrieved.Status)
	assert.Nil(t, retrieved.ExtractedText)
	assert.Nil(t, retrieved.Summary)
}

func TestDocumentRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentRepository_UpdateStatus_ForwardOnly(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)
	doc := newStoredDocument(ctx, t, repo)

	require.NoError(t, repo.UpdateStatus(ctx, doc.ID, domain.StatusTextExtracted))
	require.NoError(t, repo.UpdateStatus(ctx, doc.ID, domain.StatusChunked))

	// regressions are rejected
	err := repo.UpdateStatus(ctx, doc.ID, domain.StatusUploaded)
	assert.Error(t, err)

	retrieved, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusChunked, retrieved.Status)
}

func TestDocumentRepository_UpdateStatus_FailedIsTerminal(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)
	doc := newStoredDocument(ctx, t, repo)

	require.NoError(t, repo.UpdateStatus(ctx, doc.ID, domain.StatusFailed))

	err := repo.UpdateStatus(ctx, doc.ID, domain.StatusTextExtracted)
	assert.Error(t, err)

	// SetStatus bypasses the guard for lifecycle restarts
	require.NoError(t, repo.SetStatus(ctx, doc.ID, domain.StatusCompleted))

	retrieved, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, retrieved.Status)
}

func TestDocumentRepository_UpdateExtractedTextAndSummary(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)
	doc := newStoredDocument(ctx, t, repo)

	require.NoError(t, repo.UpdateExtractedText(ctx, doc.ID, "full extracted text"))
	require.NoError(t, repo.UpdateSummary(ctx, doc.ID, "short summary"))

	retrieved, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved.ExtractedText)
	assert.Equal(t, "full extracted text", *retrieved.ExtractedText)
	require.NotNil(t, retrieved.Summary)
	assert.Equal(t, "short summary", *retrieved.Summary)
}

func TestDocumentRepository_ListWithCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		doc := domain.NewDocument(uuid.NewString(), "doc.txt", "text/plain", 10,
			base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Create(ctx, doc))
	}

	firstPage, cursor, err := repo.ListWithCursor(ctx, nil, 3)
	require.NoError(t, err)
	require.Len(t, firstPage, 3)
	require.NotEmpty(t, cursor)

	// newest first
	assert.True(t, firstPage[0].UploadedAt.After(firstPage[1].UploadedAt))

	decoded, err := pagination.DecodeCursor(cursor)
	require.NoError(t, err)

	secondPage, nextCursor, err := repo.ListWithCursor(ctx, decoded, 3)
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	assert.Empty(t, nextCursor)

	// no overlap between pages
	seen := map[string]bool{}
	for _, d := range firstPage {
		seen[d.ID] = true
	}
	for _, d := range secondPage {
		assert.False(t, seen[d.ID])
	}
}

func TestDocumentRepository_Delete_CascadesChunks(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	doc := newStoredDocument(ctx, t, docRepo)
	chunks := []*domain.Chunk{newStoredChunkFor(doc.ID, 0, "some content")}
	require.NoError(t, chunkRepo.ReplaceChunks(ctx, doc.ID, chunks))

	require.NoError(t, docRepo.Delete(ctx, doc.ID))

	_, err := docRepo.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	remaining, err := chunkRepo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDocumentRepository_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)

	err := repo.Delete(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}
