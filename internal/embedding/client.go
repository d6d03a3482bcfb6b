package embedding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lexgraph/lexgraph/internal/domain"
)

const (
	// DefaultModel is the OpenAI model used for generating embeddings
	DefaultModel = openai.SmallEmbedding3
	// DefaultDimensions is the expected dimension of embeddings from text-embedding-3-small
	DefaultDimensions = 1536
)

var (
	// ErrWrongDimensions is returned when the backend produces a vector of
	// unexpected length
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when no OpenAI API key is configured
	ErrNoAPIKey = errors.New("OpenAI API key not configured")
)

// API defines the interface for the embedding backend call
type API interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Client wraps an embedding backend with validation and batch semantics
type Client struct {
	api        API
	dimensions int
}

// OpenAIAdapter adapts the go-openai client to the API interface
type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel) *OpenAIAdapter {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateEmbedding calls the OpenAI API to embed a single text
func (a *OpenAIAdapter) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}
	return resp.Data[0].Embedding, nil
}

// Config carries the embedding backend settings fixed at startup
type Config struct {
	APIKey     string
	Model      openai.EmbeddingModel
	Dimensions int
}

// NewClient creates a new embedding client using defaults
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new embedding client with explicit configuration
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Client{
		api:        NewOpenAIAdapter(cfg.APIKey, cfg.Model),
		dimensions: dimensions,
	}
}

// NewClientWithAPI creates a client over an explicit backend, used by tests
func NewClientWithAPI(api API, dimensions int) *Client {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Client{api: api, dimensions: dimensions}
}

// Dimensions returns the configured embedding dimension
func (c *Client) Dimensions() int {
	return c.dimensions
}

// GenerateEmbedding generates an embedding for the given text. Blank text is
// a caller error; backend failures surface as embedding errors.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}

	vector, err := c.api.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbedding, "embedding backend call failed", err)
	}
	if len(vector) != c.dimensions {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeEmbedding,
			fmt.Sprintf("expected %d dimensions, got %d", c.dimensions, len(vector)), ErrWrongDimensions)
	}
	return vector, nil
}

// BatchResult pairs a generated vector with the index of its source text
type BatchResult struct {
	SourceIndex int
	Vector      []float32
}

// GenerateBatch embeds a sequence of texts, aligned by source index. Blank
// entries are skipped, and a backend failure on one entry is logged and
// skipped rather than failing the whole batch.
func (c *Client) GenerateBatch(ctx context.Context, texts []string) []BatchResult {
	results := make([]BatchResult, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		vector, err := c.GenerateEmbedding(ctx, text)
		if err != nil {
			log.Printf("skipping embedding for batch item %d: %v", i, err)
			continue
		}
		results = append(results, BatchResult{SourceIndex: i, Vector: vector})
	}
	return results
}
