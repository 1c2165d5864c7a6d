package mocks

import "context"

// IndexManager is a mock implementation of ports.IndexManager.
type IndexManager struct {
	EnsureErr error
	DeleteErr error

	// Call tracking
	EnsureIndexCallCount int
	DeleteIndexCallCount int
	LastDimensions       uint64
}

// EnsureIndex returns the configured error.
func (m *IndexManager) EnsureIndex(ctx context.Context, dimensions uint64) error {
	m.EnsureIndexCallCount++
	m.LastDimensions = dimensions
	return m.EnsureErr
}

// DeleteIndex returns the configured error.
func (m *IndexManager) DeleteIndex(ctx context.Context) error {
	m.DeleteIndexCallCount++
	return m.DeleteErr
}
