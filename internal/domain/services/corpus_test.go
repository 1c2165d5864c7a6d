package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/mocks"
)

func ptr(s string) *string {
	return &s
}

func samplePatchNotes() *entities.PatchNotes {
	return &entities.PatchNotes{
		PatchNumber: ptr("7.38c"),
		PatchName:   ptr("7.38c"),
		GeneralNotes: []entities.GeneralNote{
			{Title: "Matchmaking", Generic: []entities.NoteLine{{Note: "Ranked matchmaking now uses a new rating formula"}}},
			{Title: "Empty"},
		},
		Items: []entities.ItemNote{
			{AbilityID: 1, AbilityNotes: []entities.NoteLine{{Note: "Cooldown reduced", Info: "15 to 14"}}},
			{AbilityID: -1, AbilityNotes: []entities.NoteLine{{Note: "ignored"}}},
		},
		NeutralItems: []entities.ItemNote{
			{AbilityID: 1600, AbilityNotes: []entities.NoteLine{{Note: "Bonus damage increased"}}},
		},
		Heroes: []entities.HeroNote{
			{
				HeroID: 5,
				Abilities: []entities.AbilityNote{
					{AbilityID: 10, AbilityNotes: []entities.NoteLine{{Note: "Damage increased", Info: "10 to 15"}}},
					{AbilityID: 11},
				},
			},
		},
	}
}

func TestCorpusAssembler_Assemble(t *testing.T) {
	a := NewCorpusAssembler(nil)

	corpus, err := a.Assemble(samplePatchNotes(), testLookups())
	require.NoError(t, err)

	assert.Equal(t, entities.PatchIdentity{PatchNumber: "7.38c", PatchName: "7.38c"}, corpus.Patch)
	assert.Equal(t, entities.CategoryCounts{General: 1, Items: 1, NeutralItems: 1, Heroes: 1}, corpus.Counts())
	// the empty general note and the empty ability
	assert.Equal(t, 2, corpus.Dropped)

	all := corpus.All()
	require.Len(t, all, 4)
	assert.Equal(t, "generic", all[0].Metadata.Type)
	assert.Equal(t, "hero_items", all[1].Metadata.Subtype)
	assert.Equal(t, "neutral_items", all[2].Metadata.Subtype)
	assert.Equal(t, "heroes", all[3].Metadata.Type)

	for _, doc := range all {
		assert.Equal(t, doc.PageContent, doc.Metadata.OriginalChangeText)
		assert.NotEmpty(t, doc.PageContent)
	}

	partitions := corpus.Partitions()
	require.Len(t, partitions, 4)
	assert.Equal(t, CategoryGeneral, partitions[0].Category)
	assert.Equal(t, CategoryHeroes, partitions[3].Category)
}

func TestCorpusAssembler_SentinelOnlyItems(t *testing.T) {
	a := NewCorpusAssembler(nil)

	corpus, err := a.Assemble(&entities.PatchNotes{
		PatchNumber: ptr("7.38c"),
		PatchName:   ptr("7.38c"),
		Items:       []entities.ItemNote{{AbilityID: -1, AbilityNotes: []entities.NoteLine{{Note: "x"}}}},
	}, testLookups())
	require.NoError(t, err)
	assert.Empty(t, corpus.Items)
	assert.Equal(t, 0, corpus.Counts().Total())
}

func TestPatchIdentityOf(t *testing.T) {
	tests := []struct {
		name    string
		notes   *entities.PatchNotes
		wantErr bool
	}{
		{name: "nil payload", notes: nil, wantErr: true},
		{name: "missing number", notes: &entities.PatchNotes{PatchName: ptr("7.38")}, wantErr: true},
		{name: "missing name", notes: &entities.PatchNotes{PatchNumber: ptr("7.38")}, wantErr: true},
		{name: "present", notes: &entities.PatchNotes{PatchNumber: ptr("7.38"), PatchName: ptr("7.38")}},
		{name: "present but empty", notes: &entities.PatchNotes{PatchNumber: ptr(""), PatchName: ptr("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PatchIdentityOf(tt.notes)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingPatchIdentity)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCorpusService_Build(t *testing.T) {
	heroes := &entities.HeroList{}
	heroes.Result.Data.Heroes = []entities.ReferenceEntry{{ID: 5, NameLoc: "Axe"}}
	abilities := &entities.AbilityList{}
	abilities.Result.Data.ItemAbilities = []entities.ReferenceEntry{{ID: 10, NameLoc: "Berserker's Call"}}

	t.Run("success", func(t *testing.T) {
		fetcher := &mocks.PatchFetcher{
			Notes:     samplePatchNotes(),
			Heroes:    heroes,
			Abilities: abilities,
			Items:     &entities.AbilityList{},
		}
		svc := NewCorpusService(fetcher, NewCorpusAssembler(nil))

		corpus, err := svc.Build(context.Background(), "7.38c")
		require.NoError(t, err)
		assert.Equal(t, []string{"7.38c"}, fetcher.RequestedVersions)
		require.Len(t, corpus.Heroes, 1)
		assert.Equal(t, "Axe", corpus.Heroes[0].Metadata.Title)
		// item 1 is unknown to the empty item list
		assert.Equal(t, entities.NotAvailable, corpus.Items[0].Metadata.Title)
	})

	t.Run("fetch failure aborts", func(t *testing.T) {
		fetchErr := errors.New("connection refused")
		fetcher := &mocks.PatchFetcher{Heroes: heroes, AbilitiesErr: fetchErr}
		svc := NewCorpusService(fetcher, NewCorpusAssembler(nil))

		_, err := svc.Build(context.Background(), "7.38c")
		require.ErrorIs(t, err, fetchErr)
		assert.Empty(t, fetcher.RequestedVersions)
	})

	t.Run("missing identity", func(t *testing.T) {
		fetcher := &mocks.PatchFetcher{Notes: &entities.PatchNotes{}, Heroes: heroes}
		svc := NewCorpusService(fetcher, NewCorpusAssembler(nil))

		_, err := svc.Build(context.Background(), "7.38c")
		require.ErrorIs(t, err, ErrMissingPatchIdentity)
	})
}
