// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/ersonp/patchrag/internal/domain/ports"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
)

// IndexConnector opens the index manager described by cfg. The returned
// closer releases the connection.
type IndexConnector func(ctx context.Context, cfg *config.Config) (ports.IndexManager, io.Closer, error)

// InitHandler handles workspace initialization.
type InitHandler struct {
	connect IndexConnector
}

// NewInitHandler creates a new init handler. A nil connector skips index
// creation.
func NewInitHandler(connect IndexConnector) *InitHandler {
	return &InitHandler{connect: connect}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath   string
	Index        string
	IndexCreated bool
}

// Handle writes the default config under basePath and creates the vector
// index it names.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("patchrag already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	result := &InitResult{
		ConfigPath: config.ConfigFilePath(basePath),
		Index:      cfg.VectorStore.Index,
	}

	if h.connect == nil {
		return result, nil
	}

	manager, closer, err := h.connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.VectorStore.Provider, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	if err := manager.EnsureIndex(ctx, uint64(cfg.Embedder.Dimensions)); err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	result.IndexCreated = true

	return result, nil
}
