package mocks

import (
	"context"

	"github.com/ersonp/patchrag/internal/domain/entities"
)

// DocumentStore is a mock implementation of ports.DocumentStore.
// Search applies the filter to Documents and returns them in stored order.
type DocumentStore struct {
	Documents []entities.RetrievedDocument
	Err       error
	SaveErr   error
	CountErr  error

	// Call tracking
	SaveBatchCallCount int
	Saved              []entities.EmbeddedDocument
	SearchCallCount    int
	LastFilter         entities.Filter
	LastLimit          int
}

// SaveBatch records the documents.
func (m *DocumentStore) SaveBatch(ctx context.Context, docs []entities.EmbeddedDocument) error {
	m.SaveBatchCallCount++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = append(m.Saved, docs...)
	return nil
}

// Search returns the stored documents matching filter, up to limit.
func (m *DocumentStore) Search(ctx context.Context, embedding []float32, filter entities.Filter, limit int) ([]entities.RetrievedDocument, error) {
	m.SearchCallCount++
	m.LastFilter = filter
	m.LastLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	var found []entities.RetrievedDocument
	for _, doc := range m.Documents {
		if !filter.Matches(doc.Metadata) {
			continue
		}
		found = append(found, doc)
		if len(found) == limit {
			break
		}
	}
	return found, nil
}

// Count returns the number of saved plus preloaded documents.
func (m *DocumentStore) Count(ctx context.Context) (uint64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return uint64(len(m.Documents) + len(m.Saved)), nil
}
