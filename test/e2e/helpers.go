//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexgraph/lexgraph/internal/api/handlers"
	"github.com/lexgraph/lexgraph/internal/embedding"
	"github.com/lexgraph/lexgraph/internal/extract"
	"github.com/lexgraph/lexgraph/internal/repository"
	"github.com/lexgraph/lexgraph/internal/server"
	"github.com/lexgraph/lexgraph/internal/service"
	"github.com/lexgraph/lexgraph/internal/testutil"
)

// E2ETestEnv holds all resources needed for end-to-end tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	AuthToken    string
	HTTPClient   *http.Client
}

// SetupE2EEnv starts a postgres container and an in-process server wired with
// a deterministic embedding backend, so no external APIs are needed.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Bootstrap registers an account and logs in, storing the token
func (e *E2ETestEnv) Bootstrap() {
	creds := map[string]string{"email": "e2e@example.com", "password": "password123"}

	if _, err := e.Post("/auth/register", creds, ""); err != nil {
		e.T.Fatalf("failed to register account: %v", err)
	}

	resp, err := e.Post("/auth/login", creds, "")
	if err != nil {
		e.T.Fatalf("failed to log in: %v", err)
	}

	var loginData struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &loginData); err != nil {
		e.T.Fatalf("failed to parse login response: %v", err)
	}
	e.AuthToken = loginData.Token
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path, authToken string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil, authToken)
}

// UploadDocument uploads a file through the multipart endpoint
func (e *E2ETestEnv) UploadDocument(filename string, content []byte, authToken string) (*APIResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", e.ServerURL+"/documents", &buf)
	if err != nil {
		return nil, err
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return e.send(req)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	return e.send(req)
}

func (e *E2ETestEnv) send(req *http.Request) (*APIResponse, error) {
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		return &APIResponse{}, nil
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// hashEmbedder produces deterministic vectors from text content so that
// identical texts land on identical vectors and similar runs are repeatable.
type hashEmbedder struct{}

func (hashEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, embedding.DefaultDimensions)
	for i, word := range strings.Fields(strings.ToLower(text)) {
		var h uint32
		for _, r := range word {
			h = h*31 + uint32(r)
		}
		v[int(h)%len(v)] += 1.0 / float32(i+1)
	}
	return v, nil
}

// echoChat answers with a fixed prefix plus the prompt's question line, enough
// to assert the prompt made it through the RAG path.
type echoChat struct{}

func (echoChat) CreateCompletion(ctx context.Context, prompt string) (string, error) {
	lines := strings.Split(prompt, "\n")
	return "answer: " + lines[len(lines)-1], nil
}

// startServer starts the HTTP server with all handlers wired to fakes
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	docRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	embedder := embedding.NewClientWithAPI(hashEmbedder{}, embedding.DefaultDimensions)
	chatClient := embedding.NewChatClientWithAPI(echoChat{})

	pipelineSvc := service.NewPipelineService(docRepo, chunkRepo, extract.NewPlainExtractor(), embedder, service.PipelineConfig{
		ChunkSize:   200,
		OverlapSize: 40,
	})
	authSvc := service.NewAuthService(userRepo, "e2e-test-secret", time.Hour)
	ragSvc := service.NewRAGService(pipelineSvc, chatClient)

	router := server.NewRouter(server.RouterConfig{
		TokenValidator:  authSvc,
		AuthHandler:     handlers.NewAuthHandler(authSvc),
		DocumentHandler: handlers.NewDocumentHandler(pipelineSvc),
		SearchHandler:   handlers.NewSearchHandler(pipelineSvc, ragSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
