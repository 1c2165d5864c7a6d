package services

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
)

var (
	// rePatchMention matches "patch 7.38c" or "version 7.38".
	rePatchMention = regexp.MustCompile(`(?i)\b(?:patch|version)\s+v?(\d+\.\d+[a-z]?)\b`)
	// reBarePatch matches a bare patch number such as 7.38c. Majors outside 6-9
	// are stat values, not patches.
	reBarePatch = regexp.MustCompile(`\b([6-9]\.\d{2}[a-z]?)\b`)
)

// HeuristicQueryConstructor infers filters from patch numbers and a few
// category keywords in the question.
type HeuristicQueryConstructor struct{}

// ConstructQuery implements ports.QueryConstructor.
func (HeuristicQueryConstructor) ConstructQuery(_ context.Context, question string) (ports.StructuredQuery, error) {
	var filter entities.Filter

	if m := rePatchMention.FindStringSubmatch(question); m != nil {
		filter.PatchNumber = strings.ToLower(m[1])
	} else if m := reBarePatch.FindStringSubmatch(question); m != nil {
		filter.PatchNumber = strings.ToLower(m[1])
	}

	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "neutral item"):
		filter.Type = string(entities.ChangeTypeItems)
		filter.Subtype = string(entities.SubtypeNeutralItems)
	case strings.Contains(lower, "facet"):
		filter.Type = string(entities.ChangeTypeHeroes)
		filter.Subtype = string(entities.SubtypeFacets)
	}

	return ports.StructuredQuery{Query: question, Filter: filter}, nil
}

// ChainQueryConstructor tries constructors in order and returns the first
// non-empty filter. Failing constructors are logged and skipped.
type ChainQueryConstructor struct {
	constructors []ports.QueryConstructor
	logger       *zap.Logger
}

// NewChainQueryConstructor creates a chain over constructors. Nil entries are
// ignored.
func NewChainQueryConstructor(logger *zap.Logger, constructors ...ports.QueryConstructor) *ChainQueryConstructor {
	if logger == nil {
		logger = zap.NewNop()
	}
	chain := &ChainQueryConstructor{logger: logger}
	for _, c := range constructors {
		if c != nil {
			chain.constructors = append(chain.constructors, c)
		}
	}
	return chain
}

// ConstructQuery implements ports.QueryConstructor.
func (c *ChainQueryConstructor) ConstructQuery(ctx context.Context, question string) (ports.StructuredQuery, error) {
	for _, constructor := range c.constructors {
		structured, err := constructor.ConstructQuery(ctx, question)
		if err != nil {
			c.logger.Debug("query constructor failed", zap.Error(err))
			continue
		}
		structured.Filter = SanitizeFilter(structured.Filter)
		if !structured.Filter.IsEmpty() {
			return structured, nil
		}
	}
	return ports.StructuredQuery{Query: question}, nil
}

// SanitizeFilter drops type and subtype values outside the known sets and
// subtypes that don't belong to the filtered type.
func SanitizeFilter(f entities.Filter) entities.Filter {
	f.Type = strings.TrimSpace(f.Type)
	f.Subtype = strings.TrimSpace(f.Subtype)
	if f.Type != "" && !entities.IsChangeType(f.Type) {
		f.Type = ""
	}
	if f.Subtype != "" && !entities.IsSubtype(f.Subtype) {
		f.Subtype = ""
	}
	if f.Type != "" && f.Subtype != "" && !entities.ValidBucket(entities.ChangeType(f.Type), entities.Subtype(f.Subtype)) {
		f.Subtype = ""
	}
	return f
}
