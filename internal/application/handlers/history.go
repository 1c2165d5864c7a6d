package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
)

// HistoryHandler lists recorded ingestion runs.
type HistoryHandler struct {
	history ports.IngestionHistory
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(history ports.IngestionHistory) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Handle returns up to limit runs, newest first.
func (h *HistoryHandler) Handle(ctx context.Context, limit int) ([]entities.IngestionRun, error) {
	runs, err := h.history.ListIngestions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing ingestions: %w", err)
	}
	return runs, nil
}
