package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lexgraph/lexgraph/internal/domain"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) FindSimilarChunks(ctx context.Context, query string, limit int) ([]*domain.Chunk, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestBuildPrompt_WithSources(t *testing.T) {
	sources := []*domain.Chunk{
		{Content: "Go was released in 2009."},
		{Content: "Go has goroutines."},
	}

	prompt := BuildPrompt("When was Go released?", sources)

	assert.True(t, strings.HasPrefix(prompt, "Context:\n"))
	assert.Contains(t, prompt, "Go was released in 2009.")
	assert.Contains(t, prompt, "Go has goroutines.")
	assert.True(t, strings.HasSuffix(prompt, "Question: When was Go released?"))
	// context comes before the question
	assert.Less(t, strings.Index(prompt, "goroutines"), strings.Index(prompt, "Question:"))
}

func TestBuildPrompt_NoSources(t *testing.T) {
	assert.Equal(t, "What is Go?", BuildPrompt("What is Go?", nil))
}

func TestAsk_BlankQuestion(t *testing.T) {
	svc := NewRAGService(&mockSearcher{}, &mockCompleter{})

	_, err := svc.Ask(context.Background(), "  ", 5)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestAsk_GroundedAnswer(t *testing.T) {
	sources := []*domain.Chunk{{ID: "c1", Content: "Go was released in 2009."}}

	searcher := &mockSearcher{}
	searcher.On("FindSimilarChunks", mock.Anything, "When?", 5).Return(sources, nil)

	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, BuildPrompt("When?", sources)).Return("In 2009.", nil)

	svc := NewRAGService(searcher, completer)

	answer, err := svc.Ask(context.Background(), "When?", 5)

	require.NoError(t, err)
	assert.Equal(t, "In 2009.", answer.Text)
	assert.Equal(t, sources, answer.Sources)
}

func TestAsk_DefaultsLimit(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("FindSimilarChunks", mock.Anything, "q", DefaultAnswerContextChunks).Return([]*domain.Chunk{}, nil)

	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, "q").Return("a", nil)

	svc := NewRAGService(searcher, completer)

	_, err := svc.Ask(context.Background(), "q", 0)

	require.NoError(t, err)
	searcher.AssertExpectations(t)
}

func TestAsk_CompletionFailure(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("FindSimilarChunks", mock.Anything, "q", 3).Return([]*domain.Chunk{}, nil)

	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("backend down"))

	svc := NewRAGService(searcher, completer)

	_, err := svc.Ask(context.Background(), "q", 3)

	assert.Error(t, err)
}
