package service

import (
	"context"
	"strings"

	"github.com/lexgraph/lexgraph/internal/domain"
)

// DefaultAnswerContextChunks bounds how many retrieved chunks feed a prompt
const DefaultAnswerContextChunks = 5

// ChunkSearcher retrieves the chunks most relevant to a query
type ChunkSearcher interface {
	FindSimilarChunks(ctx context.Context, query string, limit int) ([]*domain.Chunk, error)
}

// CompletionClient generates a text answer for a prompt
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Answer is a RAG response with the chunks used to ground it
type Answer struct {
	Text    string
	Sources []*domain.Chunk
}

// RAGService answers questions over the corpus: retrieve nearest chunks,
// assemble a grounded prompt, complete.
type RAGService struct {
	searcher  ChunkSearcher
	completer CompletionClient
}

func NewRAGService(searcher ChunkSearcher, completer CompletionClient) *RAGService {
	return &RAGService{searcher: searcher, completer: completer}
}

// Ask retrieves context for the question and produces a grounded answer.
// With no retrievable context the question goes to the model as-is.
func (s *RAGService) Ask(ctx context.Context, question string, limit int) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "question is required")
	}
	if limit <= 0 {
		limit = DefaultAnswerContextChunks
	}

	sources, err := s.searcher.FindSimilarChunks(ctx, question, limit)
	if err != nil {
		return nil, err
	}

	text, err := s.completer.Complete(ctx, BuildPrompt(question, sources))
	if err != nil {
		return nil, err
	}

	return &Answer{Text: text, Sources: sources}, nil
}

// BuildPrompt assembles the grounded completion prompt from the retrieved
// chunks and the user's question.
func BuildPrompt(question string, sources []*domain.Chunk) string {
	if len(sources) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	for _, chunk := range sources {
		b.WriteString(chunk.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
