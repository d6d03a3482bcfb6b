//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgraph/lexgraph/internal/domain"
	"github.com/lexgraph/lexgraph/internal/testutil"
)

type relationshipFixture struct {
	docs   *DocumentRepository
	chunks *ChunkRepository
	rels   *RelationshipRepository
}

func setupRelationshipRepos(ctx context.Context, t *testing.T) (*relationshipFixture, func()) {
	t.Helper()
	pc := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	cleanup := func() {
		pool.Close()
		pc.Terminate(ctx)
	}
	return &relationshipFixture{
		docs:   NewDocumentRepository(pool),
		chunks: NewChunkRepository(pool),
		rels:   NewRelationshipRepository(pool),
	}, cleanup
}

// storedChunkPair creates a document with two chunks and returns their IDs
func storedChunkPair(ctx context.Context, t *testing.T, f *relationshipFixture) (string, string) {
	t.Helper()
	doc := newStoredDocument(ctx, t, f.docs)
	a := newStoredChunkFor(doc.ID, 0, "first")
	b := newStoredChunkFor(doc.ID, 1, "second")
	require.NoError(t, f.chunks.ReplaceChunks(ctx, doc.ID, []*domain.Chunk{a, b}))
	return a.ID, b.ID
}

func TestRelationshipRepository_CreateAndListByChunk(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupRelationshipRepos(ctx, t)
	defer cleanup()

	source, target := storedChunkPair(ctx, t, f)

	rel := &domain.ChunkRelationship{
		ID:            uuid.NewString(),
		SourceChunkID: source,
		TargetChunkID: target,
		Type:          domain.RelationshipSimilar,
		Similarity:    0.93,
		Metadata:      `{"model":"text-embedding-3-small"}`,
	}
	require.NoError(t, f.rels.Create(ctx, rel))

	// visible from both ends
	fromSource, err := f.rels.ListByChunk(ctx, source)
	require.NoError(t, err)
	require.Len(t, fromSource, 1)
	assert.Equal(t, rel.ID, fromSource[0].ID)
	assert.Equal(t, domain.RelationshipSimilar, fromSource[0].Type)
	assert.InDelta(t, 0.93, fromSource[0].Similarity, 0.001)
	assert.Equal(t, rel.Metadata, fromSource[0].Metadata)
	assert.False(t, fromSource[0].CreatedAt.IsZero())

	fromTarget, err := f.rels.ListByChunk(ctx, target)
	require.NoError(t, err)
	require.Len(t, fromTarget, 1)
	assert.Equal(t, rel.ID, fromTarget[0].ID)
}

func TestRelationshipRepository_Create_RejectsSelfReference(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupRelationshipRepos(ctx, t)
	defer cleanup()

	source, _ := storedChunkPair(ctx, t, f)

	rel := &domain.ChunkRelationship{
		ID:            uuid.NewString(),
		SourceChunkID: source,
		TargetChunkID: source,
		Type:          domain.RelationshipSimilar,
	}
	err := f.rels.Create(ctx, rel)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestRelationshipRepository_Delete(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupRelationshipRepos(ctx, t)
	defer cleanup()

	source, target := storedChunkPair(ctx, t, f)

	rel := &domain.ChunkRelationship{
		ID:            uuid.NewString(),
		SourceChunkID: source,
		TargetChunkID: target,
		Type:          domain.RelationshipSequence,
	}
	require.NoError(t, f.rels.Create(ctx, rel))
	require.NoError(t, f.rels.Delete(ctx, rel.ID))

	remaining, err := f.rels.ListByChunk(ctx, source)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	err = f.rels.Delete(ctx, rel.ID)
	assert.Error(t, err)
}

func TestRelationshipRepository_CascadeOnChunkReplacement(t *testing.T) {
	ctx := context.Background()
	f, cleanup := setupRelationshipRepos(ctx, t)
	defer cleanup()

	doc := newStoredDocument(ctx, t, f.docs)
	a := newStoredChunkFor(doc.ID, 0, "first")
	b := newStoredChunkFor(doc.ID, 1, "second")
	require.NoError(t, f.chunks.ReplaceChunks(ctx, doc.ID, []*domain.Chunk{a, b}))

	rel := &domain.ChunkRelationship{
		ID:            uuid.NewString(),
		SourceChunkID: a.ID,
		TargetChunkID: b.ID,
		Type:          domain.RelationshipTopical,
	}
	require.NoError(t, f.rels.Create(ctx, rel))

	// rechunking replaces the chunk rows, relationships go with them
	require.NoError(t, f.chunks.ReplaceChunks(ctx, doc.ID,
		[]*domain.Chunk{newStoredChunkFor(doc.ID, 0, "rewritten")}))

	remaining, err := f.rels.ListByChunk(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
