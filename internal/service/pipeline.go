package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/lexgraph/lexgraph/internal/domain"
	"github.com/lexgraph/lexgraph/internal/embedding"
	"github.com/lexgraph/lexgraph/internal/pagination"
	"github.com/lexgraph/lexgraph/internal/telemetry"
)

// TextExtractor is the external text-extraction collaborator. It is the sole
// source of truth for whether a content type is supported.
type TextExtractor interface {
	DetectContentType(data []byte, filename string) string
	IsSupported(contentType string) bool
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}

// EmbeddingClient is the external embedding backend collaborator
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateBatch(ctx context.Context, texts []string) []embedding.BatchResult
}

// DocumentRepositoryInterface defines document persistence used by the pipeline
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.Document, string, error)
	UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus) error
	SetStatus(ctx context.Context, id string, status domain.ProcessingStatus) error
	UpdateExtractedText(ctx context.Context, id, text string) error
	UpdateSummary(ctx context.Context, id, summary string) error
	Delete(ctx context.Context, id string) error
}

// ChunkRepositoryInterface defines the chunk store used by the pipeline
type ChunkRepositoryInterface interface {
	ReplaceChunks(ctx context.Context, documentID string, chunks []*domain.Chunk) error
	ListByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error)
	ListWithoutEmbedding(ctx context.Context, documentID string) ([]*domain.Chunk, error)
	UpdateEmbedding(ctx context.Context, chunkID string, vector []float32) error
	CountWithEmbedding(ctx context.Context) (int64, error)
	CountTotal(ctx context.Context) (int64, error)
	CountByDocument(ctx context.Context, documentID string) (total, embedded int64, err error)
	NearestNeighbors(ctx context.Context, vector []float32, limit int) ([]*domain.Chunk, error)
}

// ObjectStore optionally archives the original uploaded bytes
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// PipelineService orchestrates the document processing pipeline:
// extract -> chunk -> embed -> persist -> summarize, with status tracking.
type PipelineService struct {
	docs      DocumentRepositoryInterface
	chunks    ChunkRepositoryInterface
	extractor TextExtractor
	embedder  EmbeddingClient
	objects   ObjectStore // nil when object storage is not configured
	uuidGen   UUIDGenerator

	chunkSize   int
	overlapSize int
}

// PipelineConfig carries the chunking defaults applied when a caller does
// not override them.
type PipelineConfig struct {
	ChunkSize   int
	OverlapSize int
}

func NewPipelineService(
	docs DocumentRepositoryInterface,
	chunks ChunkRepositoryInterface,
	extractor TextExtractor,
	embedder EmbeddingClient,
	cfg PipelineConfig,
) *PipelineService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.OverlapSize < 0 {
		cfg.OverlapSize = DefaultOverlapSize
	}
	return &PipelineService{
		docs:        docs,
		chunks:      chunks,
		extractor:   extractor,
		embedder:    embedder,
		uuidGen:     &DefaultUUIDGenerator{},
		chunkSize:   cfg.ChunkSize,
		overlapSize: cfg.OverlapSize,
	}
}

// WithObjectStore attaches an optional raw-bytes archive
func (s *PipelineService) WithObjectStore(objects ObjectStore) *PipelineService {
	s.objects = objects
	return s
}

// WithUUIDGenerator overrides ID generation, used by tests
func (s *PipelineService) WithUUIDGenerator(gen UUIDGenerator) *PipelineService {
	s.uuidGen = gen
	return s
}

// ProcessDocument runs the full pipeline over an uploaded file. The document
// row is created only after the content type passes the support check; any
// later failure persists the failed status before the error propagates.
func (s *PipelineService) ProcessDocument(ctx context.Context, data []byte, filename string) (*domain.Document, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if strings.TrimSpace(filename) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "filename is required")
	}

	contentType := s.extractor.DetectContentType(data, filename)
	if !s.extractor.IsSupported(contentType) {
		return nil, domain.NewDomainError(domain.ErrCodeUnsupportedType,
			"unsupported content type: "+contentType)
	}

	doc := domain.NewDocument(s.uuidGen.NewString(), filename, contentType, int64(len(data)), time.Now().UTC())
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	if s.objects != nil {
		if err := s.objects.Put(ctx, objectKey(doc.ID), data, contentType); err != nil {
			log.Printf("failed to archive original bytes for document %s: %v", doc.ID, err)
		}
	}

	spanCtx, span := telemetry.StartSpan(ctx, "pipeline.process", telemetry.SpanAttributes{
		DocumentID: doc.ID,
		Operation:  "process",
	})
	err := s.runPipeline(spanCtx, doc, data)
	if err != nil {
		span.SetError(err)
	}
	span.End()
	if err != nil {
		s.markFailed(ctx, doc.ID)
		doc.Status = domain.StatusFailed
		return doc, wrapPipelineError(err)
	}

	return s.docs.GetByID(ctx, doc.ID)
}

func (s *PipelineService) runPipeline(ctx context.Context, doc *domain.Document, data []byte) error {
	text, err := s.extractor.ExtractText(ctx, data, doc.ContentType)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return domain.ErrNoTextExtracted
	}
	if err := s.docs.UpdateExtractedText(ctx, doc.ID, text); err != nil {
		return err
	}
	if err := s.docs.UpdateStatus(ctx, doc.ID, domain.StatusTextExtracted); err != nil {
		return err
	}

	specs, err := ChunkText(text, s.chunkSize, s.overlapSize)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return domain.ErrNoChunks
	}

	if err := s.embedAndStore(ctx, doc.ID, specs); err != nil {
		return err
	}
	if err := s.docs.UpdateStatus(ctx, doc.ID, domain.StatusChunked); err != nil {
		return err
	}
	if err := s.docs.UpdateStatus(ctx, doc.ID, domain.StatusEmbeddingsGenerated); err != nil {
		return err
	}

	if err := s.docs.UpdateSummary(ctx, doc.ID, Summarize(text)); err != nil {
		return err
	}
	if err := s.docs.UpdateStatus(ctx, doc.ID, domain.StatusSummarized); err != nil {
		return err
	}
	return s.docs.UpdateStatus(ctx, doc.ID, domain.StatusCompleted)
}

// embedAndStore generates embeddings for all chunk specs and replaces the
// document's chunk set. Chunks whose embedding call failed are stored
// without a vector; the backfill worker picks them up later.
func (s *PipelineService) embedAndStore(ctx context.Context, documentID string, specs []ChunkSpec) error {
	texts := make([]string, len(specs))
	for i, spec := range specs {
		texts[i] = spec.Text
	}

	vectors := make(map[int][]float32, len(specs))
	for _, result := range s.embedder.GenerateBatch(ctx, texts) {
		vectors[result.SourceIndex] = result.Vector
	}

	now := time.Now().UTC()
	chunks := make([]*domain.Chunk, 0, len(specs))
	for i, spec := range specs {
		chunks = append(chunks, &domain.Chunk{
			ID:         s.uuidGen.NewString(),
			DocumentID: documentID,
			ChunkIndex: spec.Index,
			Content:    spec.Text,
			ChunkSize:  len(spec.Text),
			StartPos:   spec.Start,
			EndPos:     spec.End,
			Embedding:  vectors[i],
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	return s.chunks.ReplaceChunks(ctx, documentID, chunks)
}

// Reprocess re-chunks and re-embeds a document's existing extracted text
// with new parameters. Extraction and summarization are not re-run.
func (s *PipelineService) Reprocess(ctx context.Context, documentID string, chunkSize, overlapSize int) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.ExtractedText == nil || strings.TrimSpace(*doc.ExtractedText) == "" {
		return nil, domain.ErrNoExtractedText
	}

	if chunkSize <= 0 {
		chunkSize = s.chunkSize
	}
	if overlapSize < 0 {
		overlapSize = s.overlapSize
	}

	specs, err := ChunkText(*doc.ExtractedText, chunkSize, overlapSize)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, domain.ErrNoChunks
	}

	if err := s.embedAndStore(ctx, documentID, specs); err != nil {
		s.markFailed(ctx, documentID)
		return nil, wrapPipelineError(err)
	}

	if err := s.docs.SetStatus(ctx, documentID, domain.StatusCompleted); err != nil {
		return nil, err
	}
	return s.docs.GetByID(ctx, documentID)
}

// FindSimilarChunks embeds the query and returns the nearest chunks. A
// failing embedding backend degrades to an empty result so search stays
// available; blank queries are still a caller error.
func (s *PipelineService) FindSimilarChunks(ctx context.Context, query string, limit int) ([]*domain.Chunk, error) {
	vector, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyText) {
			return nil, err
		}
		log.Printf("similarity search degraded, embedding failed: %v", err)
		telemetry.CaptureError(ctx, err)
		return []*domain.Chunk{}, nil
	}
	return s.chunks.NearestNeighbors(ctx, vector, limit)
}

// GetDocument returns a document by ID
func (s *PipelineService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.docs.GetByID(ctx, id)
}

// ListDocuments pages documents newest first
func (s *PipelineService) ListDocuments(ctx context.Context, cursorStr string, limit int) ([]*domain.Document, string, error) {
	cursor, err := pagination.DecodeCursor(cursorStr)
	if err != nil {
		return nil, "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	return s.docs.ListWithCursor(ctx, cursor, limit)
}

// DeleteDocument removes a document, its chunks and relationships, and any
// archived original bytes.
func (s *PipelineService) DeleteDocument(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	if s.objects != nil {
		if err := s.objects.DeleteObject(ctx, objectKey(id)); err != nil {
			log.Printf("failed to delete archived bytes for document %s: %v", id, err)
		}
	}
	return nil
}

// GetChunks returns a document's chunks in index order
func (s *PipelineService) GetChunks(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.chunks.ListByDocument(ctx, documentID)
}

// DownloadURL returns a link to the archived original bytes
func (s *PipelineService) DownloadURL(ctx context.Context, documentID string) (string, error) {
	if s.objects == nil {
		return "", domain.NewDomainError(domain.ErrCodeInternalError, "object storage not configured")
	}
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return "", err
	}
	return s.objects.GenerateDownloadURL(ctx, objectKey(documentID))
}

// DocumentStats describes chunk/embedding coverage for one document
type DocumentStats struct {
	DocumentID     string
	Status         domain.ProcessingStatus
	TotalChunks    int64
	EmbeddedChunks int64
}

// GetDocumentStats returns per-document chunk statistics
func (s *PipelineService) GetDocumentStats(ctx context.Context, documentID string) (*DocumentStats, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	total, embedded, err := s.chunks.CountByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &DocumentStats{
		DocumentID:     doc.ID,
		Status:         doc.Status,
		TotalChunks:    total,
		EmbeddedChunks: embedded,
	}, nil
}

// CorpusStats describes embedding coverage across the whole corpus
type CorpusStats struct {
	TotalChunks    int64
	EmbeddedChunks int64
}

// GetCorpusStats returns corpus-wide chunk statistics
func (s *PipelineService) GetCorpusStats(ctx context.Context) (*CorpusStats, error) {
	total, err := s.chunks.CountTotal(ctx)
	if err != nil {
		return nil, err
	}
	embedded, err := s.chunks.CountWithEmbedding(ctx)
	if err != nil {
		return nil, err
	}
	return &CorpusStats{TotalChunks: total, EmbeddedChunks: embedded}, nil
}

// markFailed persists the failed status best-effort; a failure to record it
// is logged and never masks the original pipeline error.
func (s *PipelineService) markFailed(ctx context.Context, documentID string) {
	if err := s.docs.SetStatus(ctx, documentID, domain.StatusFailed); err != nil {
		log.Printf("failed to mark document %s as failed: %v", documentID, err)
	}
}

// wrapPipelineError keeps domain errors intact and wraps everything else as
// a processing failure, so callers can tell input errors from infra errors.
func wrapPipelineError(err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return domain.NewDomainErrorWithCause(domain.ErrCodeProcessing, "document processing failed", err)
}

func objectKey(documentID string) string {
	return "documents/" + documentID
}
