package ports

import (
	"context"
	"errors"

	"github.com/ersonp/patchrag/internal/domain/entities"
)

var (
	// ErrIndexNotFound means the configured index does not exist.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrStoreUnavailable means the vector store could not be reached.
	ErrStoreUnavailable = errors.New("vector store unavailable")
)

// DocumentStore persists and searches embedded documents. Implementations are
// scoped to one index and namespace and must not assume exclusive access.
type DocumentStore interface {
	// SaveBatch upserts documents with their embeddings.
	SaveBatch(ctx context.Context, docs []entities.EmbeddedDocument) error

	// Search returns up to limit documents most similar to embedding whose
	// metadata satisfies filter, most relevant first.
	Search(ctx context.Context, embedding []float32, filter entities.Filter, limit int) ([]entities.RetrievedDocument, error)

	// Count returns the number of documents in the namespace.
	Count(ctx context.Context) (uint64, error)
}
