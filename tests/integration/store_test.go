package integration

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
	"github.com/ersonp/patchrag/internal/infrastructure/vectordb/pgvector"
	"github.com/ersonp/patchrag/internal/infrastructure/vectordb/qdrant"
)

type managedStore interface {
	ports.DocumentStore
	ports.IndexManager
}

func resetStore(t *testing.T, s managedStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.DeleteIndex(ctx))
	require.NoError(t, s.EnsureIndex(ctx, testDimensions))
}

func embeddedDoc(typ, subtype, title string, skill *string, content string) entities.EmbeddedDocument {
	return entities.EmbeddedDocument{
		Document: entities.Document{
			PageContent: content,
			Metadata: entities.Metadata{
				PatchNumber:        "7.38c",
				PatchName:          "7.38c",
				Type:               typ,
				Subtype:            subtype,
				Title:              title,
				SkillName:          skill,
				OriginalChangeText: content,
			},
		},
		Embedding: embedText(content),
	}
}

func sampleDocs() []entities.EmbeddedDocument {
	call := "Berserker's Call"
	return []entities.EmbeddedDocument{
		embeddedDoc("generic", "N/A", "Matchmaking", nil, `Patch "7.38c" for generic: Matchmaking - Ranked matchmaking uses a new formula.`),
		embeddedDoc("items", "neutral_items", "Ripper's Lash", nil, `Patch "7.38c" for items(neutral_items): Ripper's Lash - Bonus damage increased.`),
		embeddedDoc("heroes", "abilities", "Axe", &call, `Patch "7.38c" for heroes(abilities): Axe - Berserker's Call - Duration increased.`),
	}
}

func runStoreTests(t *testing.T, store managedStore) {
	ctx := context.Background()

	t.Run("save is idempotent", func(t *testing.T) {
		resetStore(t, store)

		require.NoError(t, store.SaveBatch(ctx, sampleDocs()))
		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), count)

		require.NoError(t, store.SaveBatch(ctx, sampleDocs()))
		count, err = store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), count)
	})

	t.Run("search ranks and filters", func(t *testing.T) {
		resetStore(t, store)
		require.NoError(t, store.SaveBatch(ctx, sampleDocs()))

		results, err := store.Search(ctx, embedText("Axe Berserker's Call duration"), entities.Filter{}, 3)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "Axe", results[0].Metadata.Title)
		require.NotNil(t, results[0].Metadata.SkillName)
		assert.Equal(t, "Berserker's Call", *results[0].Metadata.SkillName)

		results, err = store.Search(ctx, embedText("Axe Berserker's Call duration"), entities.Filter{Subtype: "neutral_items"}, 3)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Ripper's Lash", results[0].Metadata.Title)
		assert.Nil(t, results[0].Metadata.SkillName)
		assert.Equal(t, results[0].PageContent, results[0].Metadata.OriginalChangeText)
	})

	t.Run("no match", func(t *testing.T) {
		resetStore(t, store)
		require.NoError(t, store.SaveBatch(ctx, sampleDocs()))

		results, err := store.Search(ctx, embedText("anything"), entities.Filter{PatchNumber: "6.00"}, 3)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestQdrantStore(t *testing.T) {
	runStoreTests(t, testRepo)
}

func TestQdrantStore_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	resetStore(t, testRepo)
	require.NoError(t, testRepo.SaveBatch(ctx, sampleDocs()))

	other, err := qdrant.NewRepository(config.QdrantConfig{Host: testQdrantHost, Port: testQdrantPort}, storeConfig("other-writer"), nil)
	require.NoError(t, err)
	defer other.Close()

	count, err := other.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	results, err := other.Search(ctx, embedText("Axe"), entities.Filter{}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQdrantStore_MissingIndex(t *testing.T) {
	cfg := storeConfig(testNamespace)
	cfg.Index = "patchrag_missing_index"

	repo, err := qdrant.NewRepository(config.QdrantConfig{Host: testQdrantHost, Port: testQdrantPort}, cfg, nil)
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.Search(context.Background(), embedText("Axe"), entities.Filter{}, 3)
	assert.ErrorIs(t, err, ports.ErrIndexNotFound)
}

func TestQdrantStore_Unreachable(t *testing.T) {
	repo, err := qdrant.NewRepository(config.QdrantConfig{Host: "127.0.0.1", Port: 1}, storeConfig(testNamespace), nil)
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.Count(context.Background())
	assert.ErrorIs(t, err, ports.ErrStoreUnavailable)
}

func TestPGVectorStore(t *testing.T) {
	if testPG == nil {
		t.Skip("PGVECTOR_DSN not set")
	}
	runStoreTests(t, testPG)
}

func TestPGVectorStore_MissingIndex(t *testing.T) {
	if testPG == nil {
		t.Skip("PGVECTOR_DSN not set")
	}

	cfg := storeConfig(testNamespace)
	cfg.Index = "patchrag_missing_index"

	store, err := pgvector.NewStore(context.Background(), config.PGVectorConfig{DSN: os.Getenv("PGVECTOR_DSN")}, cfg, nil)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Search(context.Background(), embedText("Axe"), entities.Filter{}, 3)
	assert.ErrorIs(t, err, ports.ErrIndexNotFound)
}
