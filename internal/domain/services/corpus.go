package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
)

// ErrMissingPatchIdentity is returned when the patch notes payload lacks the
// patch number or name. Every retrieval filter depends on them.
var ErrMissingPatchIdentity = errors.New("patch identity missing from payload")

// Corpus categories, in ingestion order.
const (
	CategoryGeneral      = "general"
	CategoryItems        = "items"
	CategoryNeutralItems = "neutral_items"
	CategoryHeroes       = "heroes"
)

// Corpus is the full document set for one patch, partitioned by category.
type Corpus struct {
	Patch        entities.PatchIdentity
	General      []entities.Document
	Items        []entities.Document
	NeutralItems []entities.Document
	Heroes       []entities.Document
	Dropped      int
}

// CorpusPartition is one category's documents.
type CorpusPartition struct {
	Category  string
	Documents []entities.Document
}

// Partitions returns the categories in ingestion order.
func (c *Corpus) Partitions() []CorpusPartition {
	return []CorpusPartition{
		{Category: CategoryGeneral, Documents: c.General},
		{Category: CategoryItems, Documents: c.Items},
		{Category: CategoryNeutralItems, Documents: c.NeutralItems},
		{Category: CategoryHeroes, Documents: c.Heroes},
	}
}

// All returns every document merged into a single slice.
func (c *Corpus) All() []entities.Document {
	all := make([]entities.Document, 0, c.Counts().Total())
	for _, p := range c.Partitions() {
		all = append(all, p.Documents...)
	}
	return all
}

// Counts returns the number of documents per category.
func (c *Corpus) Counts() entities.CategoryCounts {
	return entities.CategoryCounts{
		General:      len(c.General),
		Items:        len(c.Items),
		NeutralItems: len(c.NeutralItems),
		Heroes:       len(c.Heroes),
	}
}

// CorpusAssembler runs raw patch notes through normalization and document
// building. It performs no I/O.
type CorpusAssembler struct {
	builder *DocumentBuilder
	logger  *zap.Logger
}

// NewCorpusAssembler creates a corpus assembler.
func NewCorpusAssembler(logger *zap.Logger) *CorpusAssembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CorpusAssembler{
		builder: NewDocumentBuilder(logger),
		logger:  logger,
	}
}

// Assemble builds the corpus for one patch.
func (a *CorpusAssembler) Assemble(notes *entities.PatchNotes, lookups *Lookups) (*Corpus, error) {
	patch, err := PatchIdentityOf(notes)
	if err != nil {
		return nil, err
	}

	normalizer := NewNormalizer(lookups)
	corpus := &Corpus{Patch: patch}

	general := make([]entities.RawNote, 0, len(notes.GeneralNotes))
	for i := range notes.GeneralNotes {
		general = append(general, entities.RawNote{Category: entities.ChangeTypeGeneric, General: &notes.GeneralNotes[i]})
	}
	items := itemNotes(notes.Items, entities.SubtypeHeroItems)
	neutral := itemNotes(notes.NeutralItems, entities.SubtypeNeutralItems)
	heroes := make([]entities.RawNote, 0, len(notes.Heroes))
	for i := range notes.Heroes {
		heroes = append(heroes, entities.RawNote{Category: entities.ChangeTypeHeroes, Hero: &notes.Heroes[i]})
	}

	steps := []struct {
		category string
		raw      []entities.RawNote
		dst      *[]entities.Document
	}{
		{CategoryGeneral, general, &corpus.General},
		{CategoryItems, items, &corpus.Items},
		{CategoryNeutralItems, neutral, &corpus.NeutralItems},
		{CategoryHeroes, heroes, &corpus.Heroes},
	}

	for _, step := range steps {
		docs, dropped, err := a.buildCategory(normalizer, step.raw, patch)
		if err != nil {
			return nil, fmt.Errorf("building %s documents: %w", step.category, err)
		}
		*step.dst = docs
		corpus.Dropped += dropped
		a.logger.Debug("assembled category",
			zap.String("category", step.category),
			zap.Int("documents", len(docs)),
			zap.Int("dropped", dropped))
	}

	return corpus, nil
}

func (a *CorpusAssembler) buildCategory(normalizer *Normalizer, raw []entities.RawNote, patch entities.PatchIdentity) ([]entities.Document, int, error) {
	docs := make([]entities.Document, 0, len(raw))
	dropped := 0
	for _, note := range raw {
		records, err := normalizer.Normalize(note, patch)
		if err != nil {
			return nil, 0, err
		}
		for _, rec := range records {
			doc, ok := a.builder.Build(rec)
			if !ok {
				dropped++
				continue
			}
			docs = append(docs, doc)
		}
	}
	return docs, dropped, nil
}

func itemNotes(notes []entities.ItemNote, subtype entities.Subtype) []entities.RawNote {
	raw := make([]entities.RawNote, 0, len(notes))
	for i := range notes {
		raw = append(raw, entities.RawNote{Category: entities.ChangeTypeItems, Subtype: subtype, Item: &notes[i]})
	}
	return raw
}

// PatchIdentityOf extracts the patch identity, failing when either key is
// absent from the payload.
func PatchIdentityOf(notes *entities.PatchNotes) (entities.PatchIdentity, error) {
	if notes == nil {
		return entities.PatchIdentity{}, fmt.Errorf("%w: no payload", ErrMissingPatchIdentity)
	}
	if notes.PatchNumber == nil {
		return entities.PatchIdentity{}, fmt.Errorf("%w: patch_number", ErrMissingPatchIdentity)
	}
	if notes.PatchName == nil {
		return entities.PatchIdentity{}, fmt.Errorf("%w: patch_name", ErrMissingPatchIdentity)
	}
	return entities.PatchIdentity{
		PatchNumber: *notes.PatchNumber,
		PatchName:   *notes.PatchName,
	}, nil
}

// CorpusService fetches a patch and its reference data and assembles the
// corpus.
type CorpusService struct {
	fetcher   ports.PatchFetcher
	assembler *CorpusAssembler
}

// NewCorpusService creates a corpus service.
func NewCorpusService(fetcher ports.PatchFetcher, assembler *CorpusAssembler) *CorpusService {
	return &CorpusService{
		fetcher:   fetcher,
		assembler: assembler,
	}
}

// Build fetches everything needed for version and assembles its corpus.
// Any fetch failure aborts the build.
func (s *CorpusService) Build(ctx context.Context, version string) (*Corpus, error) {
	heroes, err := s.fetcher.HeroList(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching hero list: %w", err)
	}

	abilities, err := s.fetcher.AbilityList(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching ability list: %w", err)
	}

	items, err := s.fetcher.ItemList(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching item list: %w", err)
	}

	notes, err := s.fetcher.PatchNotes(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("fetching patch notes %s: %w", version, err)
	}

	corpus, err := s.assembler.Assemble(notes, NewLookups(heroes, abilities, items))
	if err != nil {
		return nil, fmt.Errorf("assembling patch %s: %w", version, err)
	}

	return corpus, nil
}
