package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lexgraph/lexgraph/internal/api"
	"github.com/lexgraph/lexgraph/internal/domain"
	"github.com/lexgraph/lexgraph/internal/service"
)

// DefaultSearchLimit is applied when a search request omits the limit
const DefaultSearchLimit = 10

type SearchService interface {
	FindSimilarChunks(ctx context.Context, query string, limit int) ([]*domain.Chunk, error)
	GetCorpusStats(ctx context.Context) (*service.CorpusStats, error)
}

type AskService interface {
	Ask(ctx context.Context, question string, limit int) (*service.Answer, error)
}

type SearchHandler struct {
	search SearchService
	ask    AskService
}

func NewSearchHandler(search SearchService, ask AskService) *SearchHandler {
	return &SearchHandler{search: search, ask: ask}
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SearchResponse struct {
	Results []*ChunkResponse `json:"results"`
	Total   int              `json:"total"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = DefaultSearchLimit
	}

	chunks, err := h.search.FindSimilarChunks(r.Context(), req.Query, req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]*ChunkResponse, len(chunks))
	for i, c := range chunks {
		results[i] = chunkToResponse(c)
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: results, Total: len(results)})
}

type AskRequest struct {
	Question string `json:"question"`
	Limit    int    `json:"limit"`
}

type AskResponse struct {
	Answer  string           `json:"answer"`
	Sources []*ChunkResponse `json:"sources"`
}

func (h *SearchHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.ask.Ask(r.Context(), req.Question, req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	sources := make([]*ChunkResponse, len(answer.Sources))
	for i, c := range answer.Sources {
		sources[i] = chunkToResponse(c)
	}

	api.Success(w, http.StatusOK, AskResponse{Answer: answer.Text, Sources: sources})
}

type CorpusStatsResponse struct {
	TotalChunks    int64 `json:"total_chunks"`
	EmbeddedChunks int64 `json:"embedded_chunks"`
}

func (h *SearchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.search.GetCorpusStats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, CorpusStatsResponse{
		TotalChunks:    stats.TotalChunks,
		EmbeddedChunks: stats.EmbeddedChunks,
	})
}
