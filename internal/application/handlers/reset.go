package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/ersonp/patchrag/internal/domain/ports"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
)

// ResetHandler drops the configured vector index.
type ResetHandler struct {
	connect IndexConnector
}

// NewResetHandler creates a new reset handler.
func NewResetHandler(connect IndexConnector) *ResetHandler {
	return &ResetHandler{connect: connect}
}

// ResetResult contains the result of a reset.
type ResetResult struct {
	Index     string
	Deleted   bool
	Recreated bool
}

// Handle deletes the index named by cfg. A missing index is not an error.
// With recreate set, an empty index is created afterwards.
func (h *ResetHandler) Handle(ctx context.Context, cfg *config.Config, recreate bool) (*ResetResult, error) {
	manager, closer, err := h.connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.VectorStore.Provider, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	result := &ResetResult{Index: cfg.VectorStore.Index}

	switch err := manager.DeleteIndex(ctx); {
	case err == nil:
		result.Deleted = true
	case errors.Is(err, ports.ErrIndexNotFound):
	default:
		return nil, fmt.Errorf("deleting index %s: %w", cfg.VectorStore.Index, err)
	}

	if recreate {
		if err := manager.EnsureIndex(ctx, uint64(cfg.Embedder.Dimensions)); err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
		result.Recreated = true
	}

	return result, nil
}
