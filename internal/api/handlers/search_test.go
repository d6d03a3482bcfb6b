package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lexgraph/lexgraph/internal/domain"
	"github.com/lexgraph/lexgraph/internal/service"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) FindSimilarChunks(ctx context.Context, query string, limit int) ([]*domain.Chunk, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockSearchService) GetCorpusStats(ctx context.Context) (*service.CorpusStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CorpusStats), args.Error(1)
}

type MockAskService struct {
	mock.Mock
}

func (m *MockAskService) Ask(ctx context.Context, question string, limit int) (*service.Answer, error) {
	args := m.Called(ctx, question, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Answer), args.Error(1)
}

func TestSearchHandler_Search_Success(t *testing.T) {
	mockSearch := new(MockSearchService)
	handler := NewSearchHandler(mockSearch, new(MockAskService))

	chunks := []*domain.Chunk{{ID: "c1", Content: "relevant text", Embedding: []float32{0.1}}}
	mockSearch.On("FindSimilarChunks", mock.Anything, "what is go", 3).Return(chunks, nil)

	body := []byte(`{"query":"what is go","limit":3}`)
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, "c1", resp.Data.Results[0].ID)
	assert.Equal(t, 1, resp.Data.Total)
}

func TestSearchHandler_Search_DefaultsLimit(t *testing.T) {
	mockSearch := new(MockSearchService)
	handler := NewSearchHandler(mockSearch, new(MockAskService))

	mockSearch.On("FindSimilarChunks", mock.Anything, "q", DefaultSearchLimit).Return([]*domain.Chunk{}, nil)

	body := []byte(`{"query":"q"}`)
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSearch.AssertExpectations(t)
}

func TestSearchHandler_Search_MissingQuery(t *testing.T) {
	handler := NewSearchHandler(new(MockSearchService), new(MockAskService))

	body := []byte(`{"limit":3}`)
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_Search_EmptyCorpus(t *testing.T) {
	mockSearch := new(MockSearchService)
	handler := NewSearchHandler(mockSearch, new(MockAskService))

	mockSearch.On("FindSimilarChunks", mock.Anything, "anything", DefaultSearchLimit).
		Return([]*domain.Chunk{}, nil)

	body := []byte(`{"query":"anything"}`)
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Results)
	assert.Equal(t, 0, resp.Data.Total)
}

func TestSearchHandler_Ask_Success(t *testing.T) {
	mockAsk := new(MockAskService)
	handler := NewSearchHandler(new(MockSearchService), mockAsk)

	answer := &service.Answer{
		Text:    "Go is a programming language.",
		Sources: []*domain.Chunk{{ID: "c1", Content: "Go docs"}},
	}
	mockAsk.On("Ask", mock.Anything, "What is Go?", 0).Return(answer, nil)

	body := []byte(`{"question":"What is Go?"}`)
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data AskResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Go is a programming language.", resp.Data.Answer)
	require.Len(t, resp.Data.Sources, 1)
	assert.Equal(t, "c1", resp.Data.Sources[0].ID)
}

func TestSearchHandler_Ask_MissingQuestion(t *testing.T) {
	handler := NewSearchHandler(new(MockSearchService), new(MockAskService))

	body := []byte(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_Ask_BackendFailure(t *testing.T) {
	mockAsk := new(MockAskService)
	handler := NewSearchHandler(new(MockSearchService), mockAsk)

	mockAsk.On("Ask", mock.Anything, "What is Go?", 0).
		Return(nil, domain.NewDomainError(domain.ErrCodeEmbedding, "completion backend call failed"))

	body := []byte(`{"question":"What is Go?"}`)
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSearchHandler_Stats_Success(t *testing.T) {
	mockSearch := new(MockSearchService)
	handler := NewSearchHandler(mockSearch, new(MockAskService))

	mockSearch.On("GetCorpusStats", mock.Anything).Return(&service.CorpusStats{
		TotalChunks:    100,
		EmbeddedChunks: 95,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()

	handler.Stats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data CorpusStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(100), resp.Data.TotalChunks)
	assert.Equal(t, int64(95), resp.Data.EmbeddedChunks)
}
