package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lexgraph/lexgraph/internal/api/handlers"
	"github.com/lexgraph/lexgraph/internal/domain"
	"github.com/lexgraph/lexgraph/internal/service"
)

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.User), args.Error(2)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) ProcessDocument(ctx context.Context, data []byte, filename string) (*domain.Document, error) {
	args := m.Called(ctx, data, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) Reprocess(ctx context.Context, documentID string, chunkSize, overlapSize int) (*domain.Document, error) {
	args := m.Called(ctx, documentID, chunkSize, overlapSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, cursor string, limit int) ([]*domain.Document, string, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Document), args.String(1), args.Error(2)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentService) GetChunks(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockDocumentService) GetDocumentStats(ctx context.Context, documentID string) (*service.DocumentStats, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentStats), args.Error(1)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, documentID string) (string, error) {
	args := m.Called(ctx, documentID)
	return args.String(0), args.Error(1)
}

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

func setupRouter() (http.Handler, *MockTokenValidator, *MockAuthService, *MockDocumentService, *MockSearchService) {
	tokenValidator := new(MockTokenValidator)
	authSvc := new(MockAuthService)
	docSvc := new(MockDocumentService)
	searchSvc := new(MockSearchService)
	askSvc := new(MockAskService)

	cfg := RouterConfig{
		TokenValidator:  tokenValidator,
		AuthHandler:     handlers.NewAuthHandler(authSvc),
		DocumentHandler: handlers.NewDocumentHandler(docSvc),
		SearchHandler:   handlers.NewSearchHandler(searchSvc, askSvc),
	}

	return NewRouter(cfg), tokenValidator, authSvc, docSvc, searchSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_AuthenticatedRoutes_RequireAuth(t *testing.T) {
	router, _, _, _, _ := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/documents"},
		{http.MethodGet, "/documents"},
		{http.MethodGet, "/documents/123"},
		{http.MethodDelete, "/documents/123"},
		{http.MethodPost, "/documents/123/reprocess"},
		{http.MethodGet, "/documents/123/chunks"},
		{http.MethodGet, "/documents/123/stats"},
		{http.MethodGet, "/documents/123/download"},
		{http.MethodPost, "/search"},
		{http.MethodPost, "/ask"},
		{http.MethodGet, "/stats"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AuthenticatedRoutes_WithValidToken(t *testing.T) {
	router, tokenValidator, _, docSvc, _ := setupRouter()

	user := &domain.User{ID: "u-1", Email: "a@example.com"}
	tokenValidator.On("ValidateToken", mock.Anything, "valid-token").Return(user, nil)

	doc := &domain.Document{
		ID:          "doc-1",
		Filename:    "report.txt",
		ContentType: "text/plain",
		Status:      domain.StatusCompleted,
		UploadedAt:  time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	docSvc.On("GetDocument", mock.Anything, "doc-1").Return(doc, nil)

	req := httptest.NewRequest(http.MethodGet, "/documents/doc-1", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	tokenValidator.AssertExpectations(t)
	docSvc.AssertExpectations(t)
}

func TestRouter_AuthRoutes_NoTokenRequired(t *testing.T) {
	router, _, authSvc, _, _ := setupRouter()

	user := &domain.User{ID: "u-1", Email: "a@example.com", CreatedAt: time.Now().UTC()}
	authSvc.On("Register", mock.Anything, "a@example.com", "password123").Return(user, nil)

	body := []byte(`{"email":"a@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	authSvc.AssertExpectations(t)
}

func TestRouter_SearchWithValidToken(t *testing.T) {
	router, tokenValidator, _, _, searchSvc := setupRouter()

	user := &domain.User{ID: "u-1", Email: "a@example.com"}
	tokenValidator.On("ValidateToken", mock.Anything, "valid-token").Return(user, nil)
	searchSvc.On("FindSimilarChunks", mock.Anything, "vectors", 10).
		Return([]*domain.Chunk{{ID: "c1", Content: "about vectors"}}, nil)

	body := []byte(`{"query":"vectors"}`)
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	searchSvc.AssertExpectations(t)
}
