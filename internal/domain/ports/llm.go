package ports

import (
	"context"

	"github.com/ersonp/patchrag/internal/domain/entities"
)

// AnswerGenerator produces an answer from a fully assembled prompt.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TokenCounter measures prompt text in model tokens.
type TokenCounter interface {
	CountTokens(text string) int
}

// StructuredQuery is a question split into search text and metadata filter.
type StructuredQuery struct {
	Query  string          `json:"query"`
	Filter entities.Filter `json:"filter"`
}

// QueryConstructor derives a metadata filter from question text.
type QueryConstructor interface {
	// ConstructQuery returns the search text and the filter it could infer.
	// An empty filter means nothing could be inferred.
	ConstructQuery(ctx context.Context, question string) (StructuredQuery, error)
}
