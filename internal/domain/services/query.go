package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
)

// DefaultK is the default number of documents to retrieve.
const DefaultK = 3

// ErrEmptyQuery is returned for blank questions.
var ErrEmptyQuery = errors.New("query text is required")

// RetrievalRequest describes one retrieval.
type RetrievalRequest struct {
	Query string
	K     int
	// Filter is an explicit metadata constraint. When nil, the filter may be
	// inferred from Query.
	Filter *entities.Filter
	// DisableSelfQuery turns off filter inference.
	DisableSelfQuery bool
}

// RetrievalResult holds the documents found for a request.
type RetrievalResult struct {
	Query      string
	SearchText string
	Filter     entities.Filter
	Inferred   bool
	Documents  []entities.RetrievedDocument
}

// QueryService resolves questions into matching documents.
type QueryService struct {
	embedder    ports.Embedder
	store       ports.DocumentStore
	constructor ports.QueryConstructor
	logger      *zap.Logger
}

// NewQueryService creates a new query service. constructor may be nil, in
// which case no filter is ever inferred.
func NewQueryService(embedder ports.Embedder, store ports.DocumentStore, constructor ports.QueryConstructor, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{
		embedder:    embedder,
		store:       store,
		constructor: constructor,
		logger:      logger,
	}
}

// Retrieve returns up to K documents for the request, most relevant first.
func (s *QueryService) Retrieve(ctx context.Context, req RetrievalRequest) (*RetrievalResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	k := req.K
	if k <= 0 {
		k = DefaultK
	}

	result := &RetrievalResult{Query: query, SearchText: query}

	switch {
	case req.Filter != nil:
		result.Filter = *req.Filter
	case !req.DisableSelfQuery && s.constructor != nil:
		structured, err := s.constructor.ConstructQuery(ctx, query)
		if err != nil {
			s.logger.Warn("filter inference failed, searching unfiltered", zap.Error(err))
			break
		}
		result.Filter = structured.Filter
		result.Inferred = !structured.Filter.IsEmpty()
		if text := strings.TrimSpace(structured.Query); text != "" {
			result.SearchText = text
		}
	}

	s.logger.Debug("retrieving documents",
		zap.String("search_text", result.SearchText),
		zap.Any("filter", result.Filter.Conditions()),
		zap.Int("k", k))

	embedding, err := s.embedder.Embed(ctx, result.SearchText)
	if err != nil {
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}

	docs, err := s.store.Search(ctx, embedding, result.Filter, k)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}

	// An inferred filter is a guess; if it excludes everything, search the
	// whole corpus instead.
	if len(docs) == 0 && result.Inferred {
		s.logger.Debug("inferred filter matched nothing, searching unfiltered",
			zap.Any("filter", result.Filter.Conditions()))
		result.Filter = entities.Filter{}
		result.Inferred = false
		docs, err = s.store.Search(ctx, embedding, result.Filter, k)
		if err != nil {
			return nil, fmt.Errorf("searching documents: %w", err)
		}
	}

	result.Documents = make([]entities.RetrievedDocument, 0, len(docs))
	for _, doc := range docs {
		if !result.Filter.Matches(doc.Metadata) {
			continue
		}
		result.Documents = append(result.Documents, doc)
		if len(result.Documents) == k {
			break
		}
	}

	return result, nil
}
