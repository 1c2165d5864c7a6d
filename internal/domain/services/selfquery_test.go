package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/mocks"
	"github.com/ersonp/patchrag/internal/domain/ports"
)

func TestHeuristicQueryConstructor(t *testing.T) {
	tests := []struct {
		name     string
		question string
		expected entities.Filter
	}{
		{
			name:     "patch keyword",
			question: "What changed in patch 7.38c?",
			expected: entities.Filter{PatchNumber: "7.38c"},
		},
		{
			name:     "version keyword with prefix",
			question: "Summarize Version v7.37",
			expected: entities.Filter{PatchNumber: "7.37"},
		},
		{
			name:     "bare patch number",
			question: "Axe changes in 7.36b",
			expected: entities.Filter{PatchNumber: "7.36b"},
		},
		{
			name:     "neutral items",
			question: "Which neutral items were buffed in patch 7.38?",
			expected: entities.Filter{PatchNumber: "7.38", Type: "items", Subtype: "neutral_items"},
		},
		{
			name:     "facets",
			question: "List the facet changes",
			expected: entities.Filter{Type: "heroes", Subtype: "facets"},
		},
		{
			name:     "nothing to infer",
			question: "Tell me about Axe",
			expected: entities.Filter{},
		},
		{
			name:     "decimal that is not a patch",
			question: "Is 1.5 damage good?",
			expected: entities.Filter{},
		},
		{
			name:     "stat value with two decimals",
			question: "Did Axe's base attack time change from 1.70?",
			expected: entities.Filter{},
		},
		{
			name:     "stat value below patch range",
			question: "Was the cooldown reduced from 2.25?",
			expected: entities.Filter{},
		},
		{
			name:     "large stat value",
			question: "Did movement speed go up by 10.50?",
			expected: entities.Filter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			structured, err := HeuristicQueryConstructor{}.ConstructQuery(context.Background(), tt.question)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, structured.Filter)
			assert.Equal(t, tt.question, structured.Query)
		})
	}
}

func TestChainQueryConstructor(t *testing.T) {
	ctx := context.Background()

	t.Run("first non-empty wins", func(t *testing.T) {
		first := &mocks.QueryConstructor{Result: ports.StructuredQuery{Query: "q", Filter: entities.Filter{Title: "Axe"}}}
		second := &mocks.QueryConstructor{Result: ports.StructuredQuery{Filter: entities.Filter{Title: "Lina"}}}

		structured, err := NewChainQueryConstructor(nil, first, second).ConstructQuery(ctx, "Axe?")
		require.NoError(t, err)
		assert.Equal(t, "Axe", structured.Filter.Title)
		assert.Equal(t, 0, second.CallCount)
	})

	t.Run("falls through errors and empty filters", func(t *testing.T) {
		failing := &mocks.QueryConstructor{Err: errors.New("timeout")}
		empty := &mocks.QueryConstructor{}

		structured, err := NewChainQueryConstructor(nil, failing, nil, empty, HeuristicQueryConstructor{}).
			ConstructQuery(ctx, "patch 7.38 facet changes")
		require.NoError(t, err)
		assert.Equal(t, 1, failing.CallCount)
		assert.Equal(t, 1, empty.CallCount)
		assert.Equal(t, entities.Filter{PatchNumber: "7.38", Type: "heroes", Subtype: "facets"}, structured.Filter)
	})

	t.Run("invalid values are sanitized away", func(t *testing.T) {
		bad := &mocks.QueryConstructor{Result: ports.StructuredQuery{Filter: entities.Filter{Type: "creeps"}}}

		structured, err := NewChainQueryConstructor(nil, bad).ConstructQuery(ctx, "creeps")
		require.NoError(t, err)
		assert.True(t, structured.Filter.IsEmpty())
		assert.Equal(t, "creeps", structured.Query)
	})
}

func TestSanitizeFilter(t *testing.T) {
	tests := []struct {
		name     string
		input    entities.Filter
		expected entities.Filter
	}{
		{
			name:     "valid pair kept",
			input:    entities.Filter{Type: "items", Subtype: "neutral_items"},
			expected: entities.Filter{Type: "items", Subtype: "neutral_items"},
		},
		{
			name:     "unknown type dropped",
			input:    entities.Filter{Type: "runes", Title: "Bounty"},
			expected: entities.Filter{Title: "Bounty"},
		},
		{
			name:     "unknown subtype dropped",
			input:    entities.Filter{Subtype: "talents"},
			expected: entities.Filter{},
		},
		{
			name:     "mismatched subtype dropped",
			input:    entities.Filter{Type: "heroes", Subtype: "hero_items"},
			expected: entities.Filter{Type: "heroes"},
		},
		{
			name:     "subtype without type kept",
			input:    entities.Filter{Subtype: " facets "},
			expected: entities.Filter{Subtype: "facets"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilter(tt.input))
		})
	}
}
