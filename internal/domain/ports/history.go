package ports

import (
	"context"

	"github.com/ersonp/patchrag/internal/domain/entities"
)

// IngestionHistory records which patches have been inserted into the index.
type IngestionHistory interface {
	// EnsureSchema creates the storage schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// SaveIngestion records a completed ingestion run.
	SaveIngestion(ctx context.Context, run *entities.IngestionRun) error

	// ListIngestions returns runs newest first.
	ListIngestions(ctx context.Context, limit int) ([]entities.IngestionRun, error)

	// Close releases the underlying connection.
	Close() error
}
