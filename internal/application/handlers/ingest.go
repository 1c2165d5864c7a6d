package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
	"github.com/ersonp/patchrag/internal/domain/services"
)

// IngestTarget names where ingested documents are written.
type IngestTarget struct {
	Index     string
	Namespace string
}

// IngestHandler handles inserting one patch into the vector index.
type IngestHandler struct {
	corpus   *services.CorpusService
	embedder ports.Embedder
	store    ports.DocumentStore
	index    ports.IndexManager
	history  ports.IngestionHistory
	target   IngestTarget
	logger   *zap.Logger
}

// NewIngestHandler creates a new ingest handler. history may be nil, in which
// case runs are not recorded.
func NewIngestHandler(
	corpus *services.CorpusService,
	embedder ports.Embedder,
	store ports.DocumentStore,
	index ports.IndexManager,
	history ports.IngestionHistory,
	target IngestTarget,
	logger *zap.Logger,
) *IngestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestHandler{
		corpus:   corpus,
		embedder: embedder,
		store:    store,
		index:    index,
		history:  history,
		target:   target,
		logger:   logger,
	}
}

// IngestProgress reports one category after it was stored.
type IngestProgress struct {
	Category string
	Saved    int
}

// IngestResult contains the result of ingestion.
type IngestResult struct {
	Patch   entities.PatchIdentity
	Counts  entities.CategoryCounts
	Dropped int
	Run     *entities.IngestionRun
	// Stored is the namespace size after the insert, nil when it could not
	// be counted.
	Stored *uint64
}

// Handle fetches and assembles the patch, then embeds and stores each
// category in order. progressFn is called after every category, including
// empty ones.
func (h *IngestHandler) Handle(ctx context.Context, version string, progressFn func(IngestProgress)) (*IngestResult, error) {
	corpus, err := h.corpus.Build(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("building corpus: %w", err)
	}

	if err := h.index.EnsureIndex(ctx, uint64(h.embedder.Dimensions())); err != nil {
		return nil, fmt.Errorf("ensuring index %s: %w", h.target.Index, err)
	}

	for _, partition := range corpus.Partitions() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := h.save(ctx, partition.Documents); err != nil {
			return nil, fmt.Errorf("storing %s: %w", partition.Category, err)
		}

		h.logger.Debug("category stored",
			zap.String("category", partition.Category),
			zap.Int("documents", len(partition.Documents)))

		if progressFn != nil {
			progressFn(IngestProgress{Category: partition.Category, Saved: len(partition.Documents)})
		}
	}

	result := &IngestResult{
		Patch:   corpus.Patch,
		Counts:  corpus.Counts(),
		Dropped: corpus.Dropped,
	}

	if stored, err := h.store.Count(ctx); err != nil {
		h.logger.Warn("counting stored documents failed", zap.Error(err))
	} else {
		result.Stored = &stored
	}

	if h.history != nil {
		run := &entities.IngestionRun{
			Patch:     corpus.Patch,
			Index:     h.target.Index,
			Namespace: h.target.Namespace,
			Counts:    result.Counts,
			Dropped:   corpus.Dropped,
		}
		if err := h.history.SaveIngestion(ctx, run); err != nil {
			// The documents are already stored.
			h.logger.Warn("recording ingestion failed", zap.Error(err))
		} else {
			result.Run = run
		}
	}

	return result, nil
}

func (h *IngestHandler) save(ctx context.Context, docs []entities.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}

	embeddings, err := h.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding documents: %w", err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding documents: got %d embeddings for %d documents", len(embeddings), len(docs))
	}

	embedded := make([]entities.EmbeddedDocument, len(docs))
	for i, doc := range docs {
		embedded[i] = entities.EmbeddedDocument{Document: doc, Embedding: embeddings[i]}
	}

	if err := h.store.SaveBatch(ctx, embedded); err != nil {
		return fmt.Errorf("saving documents: %w", err)
	}
	return nil
}
