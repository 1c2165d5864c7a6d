package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/mocks"
)

func TestHistoryHandler_Handle(t *testing.T) {
	history := &mocks.IngestionHistory{
		Runs: []entities.IngestionRun{
			{ID: "a", Patch: entities.PatchIdentity{PatchNumber: "7.37"}},
			{ID: "b", Patch: entities.PatchIdentity{PatchNumber: "7.38"}},
			{ID: "c", Patch: entities.PatchIdentity{PatchNumber: "7.38c"}},
		},
	}
	h := NewHistoryHandler(history)

	tests := []struct {
		name    string
		limit   int
		wantIDs []string
	}{
		{name: "newest first", limit: 2, wantIDs: []string{"c", "b"}},
		{name: "no limit", limit: 0, wantIDs: []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := h.Handle(context.Background(), tt.limit)
			require.NoError(t, err)

			ids := make([]string, len(runs))
			for i, run := range runs {
				ids[i] = run.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestHistoryHandler_Handle_Error(t *testing.T) {
	h := NewHistoryHandler(&mocks.IngestionHistory{Err: errors.New("database is locked")})

	_, err := h.Handle(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing ingestions: database is locked")
}
