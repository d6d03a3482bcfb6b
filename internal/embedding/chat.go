package embedding

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lexgraph/lexgraph/internal/domain"
)

// DefaultChatModel is the completion model used for RAG answers
const DefaultChatModel = openai.GPT4oMini

// ChatAPI defines the interface for the completion backend call
type ChatAPI interface {
	CreateCompletion(ctx context.Context, prompt string) (string, error)
}

// ChatClient wraps a text-completion backend for RAG answering
type ChatClient struct {
	api ChatAPI
}

// OpenAIChatAdapter adapts the go-openai chat API to the ChatAPI interface
type OpenAIChatAdapter struct {
	client *openai.Client
	model  string
}

func NewOpenAIChatAdapter(apiKey, model string) *OpenAIChatAdapter {
	if model == "" {
		model = DefaultChatModel
	}
	return &OpenAIChatAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (a *OpenAIChatAdapter) CreateCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// NewChatClient creates a chat client backed by OpenAI
func NewChatClient(apiKey, model string) *ChatClient {
	return &ChatClient{api: NewOpenAIChatAdapter(apiKey, model)}
}

// NewChatClientWithAPI creates a chat client over an explicit backend, used by tests
func NewChatClientWithAPI(api ChatAPI) *ChatClient {
	return &ChatClient{api: api}
}

// Complete sends a prompt to the completion backend and returns the text
// response unmodified
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.ErrEmptyText
	}
	answer, err := c.api.CreateCompletion(ctx, prompt)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeEmbedding, "completion backend call failed", err)
	}
	return answer, nil
}
