package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lexgraph/lexgraph/internal/api"
	"github.com/lexgraph/lexgraph/internal/domain"
	"github.com/lexgraph/lexgraph/internal/service"
)

// MaxUploadBytes bounds a single document upload
const MaxUploadBytes = 32 << 20

type DocumentService interface {
	ProcessDocument(ctx context.Context, data []byte, filename string) (*domain.Document, error)
	Reprocess(ctx context.Context, documentID string, chunkSize, overlapSize int) (*domain.Document, error)
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	ListDocuments(ctx context.Context, cursor string, limit int) ([]*domain.Document, string, error)
	DeleteDocument(ctx context.Context, id string) error
	GetChunks(ctx context.Context, documentID string) ([]*domain.Chunk, error)
	GetDocumentStats(ctx context.Context, documentID string) (*service.DocumentStats, error)
	DownloadURL(ctx context.Context, documentID string) (string, error)
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type DocumentResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Summary     string `json:"summary,omitempty"`
	Status      string `json:"status"`
	UploadedAt  string `json:"uploaded_at"`
	UpdatedAt   string `json:"updated_at"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	resp := &DocumentResponse{
		ID:          d.ID,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		Status:      string(d.Status),
		UploadedAt:  d.UploadedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   d.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if d.Summary != nil {
		resp.Summary = *d.Summary
	}
	return resp
}

type ChunkResponse struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id"`
	ChunkIndex   int    `json:"chunk_index"`
	Content      string `json:"content"`
	StartPos     int    `json:"start_pos"`
	EndPos       int    `json:"end_pos"`
	HasEmbedding bool   `json:"has_embedding"`
}

func chunkToResponse(c *domain.Chunk) *ChunkResponse {
	return &ChunkResponse{
		ID:           c.ID,
		DocumentID:   c.DocumentID,
		ChunkIndex:   c.ChunkIndex,
		Content:      c.Content,
		StartPos:     c.StartPos,
		EndPos:       c.EndPos,
		HasEmbedding: c.HasEmbedding(),
	}
}

// Upload ingests a document from a multipart form and runs the full
// processing pipeline before responding.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	doc, err := h.svc.ProcessDocument(r.Context(), data, header.Filename)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, documentToResponse(doc))
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

type DocumentListResponse struct {
	Items   []*DocumentResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limitStr := r.URL.Query().Get("limit")
	limit := 20
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	docs, nextCursor, err := h.svc.ListDocuments(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, len(docs))
	for i, d := range docs {
		responses[i] = documentToResponse(d)
	}

	api.Success(w, http.StatusOK, DocumentListResponse{
		Items:   responses,
		Cursor:  nextCursor,
		HasMore: nextCursor != "",
	})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.DeleteDocument(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}

type ReprocessRequest struct {
	ChunkSize   int `json:"chunk_size"`
	OverlapSize int `json:"overlap_size"`
}

// Reprocess re-chunks and re-embeds a document's stored text, optionally
// with new chunking parameters.
func (h *DocumentHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req ReprocessRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	doc, err := h.svc.Reprocess(r.Context(), id, req.ChunkSize, req.OverlapSize)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

type ChunkListResponse struct {
	Items []*ChunkResponse `json:"items"`
	Total int              `json:"total"`
}

func (h *DocumentHandler) Chunks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	chunks, err := h.svc.GetChunks(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ChunkResponse, len(chunks))
	for i, c := range chunks {
		responses[i] = chunkToResponse(c)
	}

	api.Success(w, http.StatusOK, ChunkListResponse{Items: responses, Total: len(responses)})
}

type DocumentStatsResponse struct {
	DocumentID     string `json:"document_id"`
	Status         string `json:"status"`
	TotalChunks    int64  `json:"total_chunks"`
	EmbeddedChunks int64  `json:"embedded_chunks"`
}

func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	stats, err := h.svc.GetDocumentStats(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DocumentStatsResponse{
		DocumentID:     stats.DocumentID,
		Status:         string(stats.Status),
		TotalChunks:    stats.TotalChunks,
		EmbeddedChunks: stats.EmbeddedChunks,
	})
}

type DownloadResponse struct {
	URL string `json:"url"`
}

// Download returns a presigned URL for the archived original bytes
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	url, err := h.svc.DownloadURL(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DownloadResponse{URL: url})
}
