package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/patchrag/internal/domain/mocks"
	"github.com/ersonp/patchrag/internal/domain/ports"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
)

func TestResetHandler_Handle(t *testing.T) {
	tests := []struct {
		name          string
		deleteErr     error
		recreate      bool
		wantDeleted   bool
		wantRecreated bool
		wantEnsure    int
	}{
		{name: "delete", wantDeleted: true},
		{name: "delete and recreate", recreate: true, wantDeleted: true, wantRecreated: true, wantEnsure: 1},
		{name: "missing index", deleteErr: ports.ErrIndexNotFound},
		{name: "missing index recreated", deleteErr: ports.ErrIndexNotFound, recreate: true, wantRecreated: true, wantEnsure: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := &mocks.IndexManager{DeleteErr: tt.deleteErr}
			closer := &closeCounter{}

			result, err := NewResetHandler(connector(manager, closer, nil)).Handle(context.Background(), config.Default(), tt.recreate)
			require.NoError(t, err)

			assert.Equal(t, "dota2-patches-rag", result.Index)
			assert.Equal(t, tt.wantDeleted, result.Deleted)
			assert.Equal(t, tt.wantRecreated, result.Recreated)
			assert.Equal(t, 1, manager.DeleteIndexCallCount)
			assert.Equal(t, tt.wantEnsure, manager.EnsureIndexCallCount)
			assert.Equal(t, 1, closer.closed)
		})
	}
}

func TestResetHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		manager    *mocks.IndexManager
		connectErr error
		recreate   bool
		errMsg     string
		target     error
	}{
		{
			name:       "connect failure",
			manager:    &mocks.IndexManager{},
			connectErr: ports.ErrStoreUnavailable,
			errMsg:     "connecting to qdrant",
			target:     ports.ErrStoreUnavailable,
		},
		{
			name:    "delete failure",
			manager: &mocks.IndexManager{DeleteErr: ports.ErrStoreUnavailable},
			errMsg:  "deleting index dota2-patches-rag",
			target:  ports.ErrStoreUnavailable,
		},
		{
			name:     "recreate failure",
			manager:  &mocks.IndexManager{EnsureErr: errors.New("timed out waiting for index")},
			recreate: true,
			errMsg:   "creating index: timed out waiting for index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResetHandler(connector(tt.manager, &closeCounter{}, tt.connectErr)).
				Handle(context.Background(), config.Default(), tt.recreate)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}
