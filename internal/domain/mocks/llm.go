package mocks

import (
	"context"
	"strings"

	"github.com/ersonp/patchrag/internal/domain/ports"
)

// AnswerGenerator is a mock implementation of ports.AnswerGenerator.
type AnswerGenerator struct {
	Answer string
	Err    error

	// Call tracking
	Prompts []string
}

// Generate returns the configured answer or error.
func (m *AnswerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Answer, nil
}

// QueryConstructor is a mock implementation of ports.QueryConstructor.
type QueryConstructor struct {
	Result ports.StructuredQuery
	Err    error

	CallCount int
}

// ConstructQuery returns the configured structured query or error.
func (m *QueryConstructor) ConstructQuery(ctx context.Context, question string) (ports.StructuredQuery, error) {
	m.CallCount++
	if m.Err != nil {
		return ports.StructuredQuery{}, m.Err
	}
	return m.Result, nil
}

// TokenCounter counts whitespace separated words.
type TokenCounter struct{}

// CountTokens returns the number of words in text.
func (TokenCounter) CountTokens(text string) int {
	return len(strings.Fields(text))
}
