package ports

import "context"

// IndexManager handles vector index lifecycle operations.
// It is separate from DocumentStore so querying code never needs admin rights.
type IndexManager interface {
	// EnsureIndex creates the index with cosine distance if it doesn't exist
	// and waits until it accepts writes.
	EnsureIndex(ctx context.Context, dimensions uint64) error

	// DeleteIndex removes the index and all its data.
	DeleteIndex(ctx context.Context) error
}
