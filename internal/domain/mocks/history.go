package mocks

import (
	"context"

	"github.com/ersonp/patchrag/internal/domain/entities"
)

// IngestionHistory is a mock implementation of ports.IngestionHistory.
type IngestionHistory struct {
	Runs []entities.IngestionRun
	Err  error
}

// EnsureSchema returns the configured error.
func (m *IngestionHistory) EnsureSchema(ctx context.Context) error {
	return m.Err
}

// SaveIngestion appends the run.
func (m *IngestionHistory) SaveIngestion(ctx context.Context, run *entities.IngestionRun) error {
	if m.Err != nil {
		return m.Err
	}
	m.Runs = append(m.Runs, *run)
	return nil
}

// ListIngestions returns the runs newest first. A non-positive limit
// returns every run.
func (m *IngestionHistory) ListIngestions(ctx context.Context, limit int) ([]entities.IngestionRun, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if limit <= 0 {
		limit = len(m.Runs)
	}
	runs := make([]entities.IngestionRun, 0, len(m.Runs))
	for i := len(m.Runs) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, m.Runs[i])
	}
	return runs, nil
}

// Close does nothing.
func (m *IngestionHistory) Close() error {
	return nil
}
