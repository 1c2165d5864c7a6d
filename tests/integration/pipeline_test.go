package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/patchrag/internal/application/handlers"
	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/mocks"
	"github.com/ersonp/patchrag/internal/domain/services"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
	"github.com/ersonp/patchrag/internal/infrastructure/relationaldb/sqlite"
)

func strPtr(s string) *string {
	return &s
}

func patchFetcher() *mocks.PatchFetcher {
	heroes := &entities.HeroList{}
	heroes.Result.Data.Heroes = []entities.ReferenceEntry{{ID: 2, NameLoc: "Axe"}}
	abilities := &entities.AbilityList{}
	abilities.Result.Data.ItemAbilities = []entities.ReferenceEntry{{ID: 10, NameLoc: "Berserker's Call"}}
	items := &entities.AbilityList{}
	items.Result.Data.ItemAbilities = []entities.ReferenceEntry{{ID: 1600, NameLoc: "Ripper's Lash"}}

	return &mocks.PatchFetcher{
		Heroes:    heroes,
		Abilities: abilities,
		Items:     items,
		Notes: &entities.PatchNotes{
			PatchNumber: strPtr("7.38c"),
			PatchName:   strPtr("7.38c"),
			GeneralNotes: []entities.GeneralNote{
				{Title: "Matchmaking", Generic: []entities.NoteLine{{Note: "Ranked matchmaking uses a new formula"}}},
			},
			NeutralItems: []entities.ItemNote{
				{AbilityID: 1600, AbilityNotes: []entities.NoteLine{{Note: "Bonus damage increased", Info: "10 to 12"}}},
			},
			Heroes: []entities.HeroNote{
				{HeroID: 2, Abilities: []entities.AbilityNote{
					{AbilityID: 10, AbilityNotes: []entities.NoteLine{{Note: "Duration increased"}}},
				}},
			},
		},
	}
}

func TestPipeline_InsertThenAsk(t *testing.T) {
	ctx := context.Background()
	resetStore(t, testRepo)

	history, err := sqlite.NewRepository(config.HistoryConfig{Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	defer history.Close()
	require.NoError(t, history.EnsureSchema(ctx))

	corpus := services.NewCorpusService(patchFetcher(), services.NewCorpusAssembler(nil))
	ingest := handlers.NewIngestHandler(corpus, hashEmbedder{}, testRepo, testRepo, history,
		handlers.IngestTarget{Index: testIndex, Namespace: testNamespace}, nil)

	result, err := ingest.Handle(ctx, "7.38c", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Counts.Total())
	require.NotNil(t, result.Run)
	assert.NotEmpty(t, result.Run.ID)

	count, err := testRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	// re-inserting the same patch does not duplicate documents
	_, err = ingest.Handle(ctx, "7.38c", nil)
	require.NoError(t, err)
	count, err = testRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	runs, err := handlers.NewHistoryHandler(history).Handle(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	generator := &mocks.AnswerGenerator{Answer: "Berserker's Call lasts longer (7.38c)."}
	query := services.NewQueryService(hashEmbedder{}, testRepo, services.HeuristicQueryConstructor{}, nil)
	answer := services.NewAnswerService(query, generator, nil, 0)
	qh := handlers.NewQueryHandler(answer, query)

	reply, err := qh.Handle(ctx, "Tell me about changes to the neutral item Ripper's Lash in patch 7.38c.", handlers.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "7.38c", reply.Filter.PatchNumber)
	require.NotEmpty(t, reply.Sources)
	for _, doc := range reply.Sources {
		assert.Equal(t, "7.38c", doc.Metadata.PatchNumber)
	}
	require.Len(t, generator.Prompts, 1)
	assert.Contains(t, generator.Prompts[0], "Ripper's Lash")

	none, err := qh.Handle(ctx, "What changed?", handlers.QueryOptions{Filter: entities.Filter{PatchNumber: "6.00"}})
	require.NoError(t, err)
	assert.Equal(t, services.FallbackAnswer, none.Text)
	assert.Len(t, generator.Prompts, 1)
}
