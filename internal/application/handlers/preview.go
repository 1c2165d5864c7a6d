package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/services"
)

// ErrUnknownCategory is returned for a category outside the corpus partitions.
var ErrUnknownCategory = errors.New("unknown category")

// PreviewHandler assembles a patch corpus without embedding or storing it.
type PreviewHandler struct {
	corpus *services.CorpusService
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(corpus *services.CorpusService) *PreviewHandler {
	return &PreviewHandler{corpus: corpus}
}

// PreviewResult contains the documents that an insert would store.
type PreviewResult struct {
	Patch     entities.PatchIdentity
	Counts    entities.CategoryCounts
	Dropped   int
	Documents []entities.Document
}

// Handle builds the corpus for version. An empty category selects all
// documents.
func (h *PreviewHandler) Handle(ctx context.Context, version, category string) (*PreviewResult, error) {
	if category != "" && !IsCategory(category) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	corpus, err := h.corpus.Build(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("building corpus: %w", err)
	}

	result := &PreviewResult{
		Patch:   corpus.Patch,
		Counts:  corpus.Counts(),
		Dropped: corpus.Dropped,
	}

	if category == "" {
		result.Documents = corpus.All()
		return result, nil
	}
	for _, p := range corpus.Partitions() {
		if p.Category == category {
			result.Documents = p.Documents
		}
	}
	return result, nil
}

// Categories lists the corpus categories in ingestion order.
func Categories() []string {
	return []string{
		services.CategoryGeneral,
		services.CategoryItems,
		services.CategoryNeutralItems,
		services.CategoryHeroes,
	}
}

// IsCategory reports whether s names a corpus category.
func IsCategory(s string) bool {
	for _, c := range Categories() {
		if c == s {
			return true
		}
	}
	return false
}
