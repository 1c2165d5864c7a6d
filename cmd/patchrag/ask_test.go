package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/patchrag/internal/domain/entities"
)

func TestFilterFlags_Filter(t *testing.T) {
	tests := []struct {
		name     string
		flags    filterFlags
		expected entities.Filter
		errMsg   string
	}{
		{
			name:     "no flags",
			flags:    filterFlags{},
			expected: entities.Filter{},
		},
		{
			name:  "all flags",
			flags: filterFlags{patch: "7.38c", typ: "heroes", subtype: "facets", title: "Muerta", skill: "Dead Shot"},
			expected: entities.Filter{
				PatchNumber: "7.38c",
				Type:        "heroes",
				Subtype:     "facets",
				Title:       "Muerta",
				SkillName:   "Dead Shot",
			},
		},
		{
			name:     "subtype alone",
			flags:    filterFlags{subtype: "neutral_items"},
			expected: entities.Filter{Subtype: "neutral_items"},
		},
		{
			name:   "unknown type",
			flags:  filterFlags{typ: "spells"},
			errMsg: `invalid type "spells"`,
		},
		{
			name:   "unknown subtype",
			flags:  filterFlags{subtype: "talents"},
			errMsg: `invalid subtype "talents"`,
		},
		{
			name:   "mismatched subtype",
			flags:  filterFlags{typ: "items", subtype: "abilities"},
			errMsg: `subtype "abilities" does not belong to type "items"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := tt.flags.filter()
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filter)
		})
	}
}

func TestAskCmd_InvalidFilter(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"ask", "What changed?", "--type", "spells"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid type")
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"ask"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
