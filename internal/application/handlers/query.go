package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/services"
)

// QueryHandler handles patch note questions.
type QueryHandler struct {
	answerService *services.AnswerService
	queryService  *services.QueryService
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(answerService *services.AnswerService, queryService *services.QueryService) *QueryHandler {
	return &QueryHandler{
		answerService: answerService,
		queryService:  queryService,
	}
}

// QueryOptions controls retrieval for a single question.
type QueryOptions struct {
	K int
	// Filter, when non-empty, replaces self-query.
	Filter      entities.Filter
	NoSelfQuery bool
}

func (o QueryOptions) request(question string) services.RetrievalRequest {
	req := services.RetrievalRequest{
		Query:            question,
		K:                o.K,
		DisableSelfQuery: o.NoSelfQuery,
	}
	if !o.Filter.IsEmpty() {
		filter := o.Filter
		req.Filter = &filter
	}
	return req
}

// Handle answers question from the stored patch notes.
func (h *QueryHandler) Handle(ctx context.Context, question string, opts QueryOptions) (*services.Answer, error) {
	answer, err := h.answerService.Ask(ctx, opts.request(question))
	if err != nil {
		return nil, fmt.Errorf("answering question: %w", err)
	}
	return answer, nil
}

// HandleRetrieve returns the matching documents without generating an answer.
func (h *QueryHandler) HandleRetrieve(ctx context.Context, question string, opts QueryOptions) (*services.RetrievalResult, error) {
	result, err := h.queryService.Retrieve(ctx, opts.request(question))
	if err != nil {
		return nil, fmt.Errorf("retrieving documents: %w", err)
	}
	return result, nil
}
