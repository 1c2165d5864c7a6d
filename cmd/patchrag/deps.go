package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/application/handlers"
	"github.com/ersonp/patchrag/internal/domain/ports"
	"github.com/ersonp/patchrag/internal/domain/services"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
	embedder "github.com/ersonp/patchrag/internal/infrastructure/embedder/openai"
	"github.com/ersonp/patchrag/internal/infrastructure/fetcher/datafeed"
	"github.com/ersonp/patchrag/internal/infrastructure/fetcher/snapshot"
	llm "github.com/ersonp/patchrag/internal/infrastructure/llm/openai"
	"github.com/ersonp/patchrag/internal/infrastructure/logger"
	"github.com/ersonp/patchrag/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/patchrag/internal/infrastructure/vectordb/pgvector"
	"github.com/ersonp/patchrag/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	IngestHandler *handlers.IngestHandler
	QueryHandler  *handlers.QueryHandler
}

// vectorStore is a connected document store that can also manage its index.
type vectorStore interface {
	ports.DocumentStore
	ports.IndexManager
	io.Closer
}

// loadConfig loads the config from the working directory.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// withLogger builds the logger and flushes it when fn returns.
func withLogger(fn func(*zap.Logger) error) error {
	log, err := logger.New(globalVerbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	return fn(log)
}

// openVectorStore connects to the configured vector store provider.
func openVectorStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (vectorStore, error) {
	switch cfg.VectorStore.Provider {
	case config.ProviderPGVector:
		store, err := pgvector.NewStore(ctx, cfg.PGVector, cfg.VectorStore, log)
		if err != nil {
			return nil, fmt.Errorf("creating pgvector store: %w", err)
		}
		return store, nil
	default:
		repo, err := qdrant.NewRepository(cfg.Qdrant, cfg.VectorStore, log)
		if err != nil {
			return nil, fmt.Errorf("creating qdrant repository: %w", err)
		}
		return repo, nil
	}
}

// connectIndex adapts openVectorStore for the init handler.
func connectIndex(log *zap.Logger) handlers.IndexConnector {
	return func(ctx context.Context, cfg *config.Config) (ports.IndexManager, io.Closer, error) {
		store, err := openVectorStore(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	}
}

// newPatchFetcher returns the snapshot reader when --snapshot-dir is set and
// the datafeed client otherwise.
func newPatchFetcher(cfg *config.Config, log *zap.Logger) ports.PatchFetcher {
	if globalSnapshotDir != "" {
		return snapshot.NewFetcher(globalSnapshotDir)
	}
	return datafeed.NewClient(cfg.Datafeed.BaseURL, cfg.Datafeed.Language, cfg.FetchTimeout(), log)
}

// newCorpusService wires the patch fetcher into a corpus service.
func newCorpusService(cfg *config.Config, log *zap.Logger) *services.CorpusService {
	return services.NewCorpusService(newPatchFetcher(cfg, log), services.NewCorpusAssembler(log))
}

// withHistory opens the ingestion ledger and ensures its schema.
func withHistory(ctx context.Context, cfg *config.Config, fn func(*sqlite.Repository) error) error {
	repo, err := sqlite.NewRepository(cfg.History)
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	return fn(repo)
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireOpenAI(); err != nil {
		return err
	}

	return withLogger(func(log *zap.Logger) error {
		store, err := openVectorStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer store.Close()

		return withHistory(ctx, cfg, func(history *sqlite.Repository) error {
			emb, err := embedder.NewEmbedder(cfg.Embedder)
			if err != nil {
				return fmt.Errorf("creating embedder: %w", err)
			}

			llmClient, err := llm.NewClient(cfg.LLM)
			if err != nil {
				return fmt.Errorf("creating llm client: %w", err)
			}

			var counter ports.TokenCounter
			if tc, err := llm.NewTokenCounter(llmClient.Model()); err != nil {
				log.Warn("token counter unavailable, context will not be trimmed", zap.Error(err))
			} else {
				counter = tc
			}

			constructor := services.NewChainQueryConstructor(log, llmClient, services.HeuristicQueryConstructor{})
			queryService := services.NewQueryService(emb, store, constructor, log)
			answerService := services.NewAnswerService(queryService, llmClient, counter, cfg.LLM.ContextTokens)

			target := handlers.IngestTarget{
				Index:     cfg.VectorStore.Index,
				Namespace: cfg.VectorStore.Namespace,
			}

			deps := &Deps{
				IngestHandler: handlers.NewIngestHandler(newCorpusService(cfg, log), emb, store, store, history, target, log),
				QueryHandler:  handlers.NewQueryHandler(answerService, queryService),
			}

			return fn(deps)
		})
	})
}
