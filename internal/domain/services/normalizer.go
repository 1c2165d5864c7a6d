package services

import (
	"fmt"
	"strings"

	"github.com/ersonp/patchrag/internal/domain/entities"
)

// sentinelID marks raw entries that do not describe a real hero or item.
const sentinelID = -1

// Normalizer turns raw patch note records into flat change records.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	lookups *Lookups
}

// NewNormalizer creates a normalizer resolving names through lookups.
func NewNormalizer(lookups *Lookups) *Normalizer {
	return &Normalizer{lookups: lookups}
}

// Normalize dispatches a raw record to the transform for its category.
// The result may be empty; callers must flatten it.
func (n *Normalizer) Normalize(raw entities.RawNote, patch entities.PatchIdentity) ([]entities.ChangeRecord, error) {
	switch raw.Category {
	case entities.ChangeTypeGeneric:
		if raw.General == nil {
			return nil, fmt.Errorf("%w: generic record without payload", entities.ErrInvalidChangeRecord)
		}
		return []entities.ChangeRecord{n.NormalizeGeneral(*raw.General, patch)}, nil
	case entities.ChangeTypeItems:
		if raw.Item == nil {
			return nil, fmt.Errorf("%w: item record without payload", entities.ErrInvalidChangeRecord)
		}
		return n.NormalizeItem(*raw.Item, patch, raw.Subtype)
	case entities.ChangeTypeHeroes:
		if raw.Hero == nil {
			return nil, fmt.Errorf("%w: hero record without payload", entities.ErrInvalidChangeRecord)
		}
		return n.NormalizeHero(*raw.Hero, patch)
	default:
		return nil, fmt.Errorf("%w: unknown category %q", entities.ErrInvalidChangeRecord, raw.Category)
	}
}

// NormalizeGeneral produces exactly one generic change record.
func (n *Normalizer) NormalizeGeneral(note entities.GeneralNote, patch entities.PatchIdentity) entities.ChangeRecord {
	title := note.Title
	if title == "" {
		title = entities.DefaultGeneralTitle
	}

	parts := make([]string, 0, len(note.Generic))
	for _, line := range note.Generic {
		parts = append(parts, terminate(line.Note))
	}

	return entities.NewGenericChange(patch, title, strings.Join(parts, " "))
}

// NormalizeItem produces at most one item change record. Entries with the
// sentinel ability id yield nothing.
func (n *Normalizer) NormalizeItem(note entities.ItemNote, patch entities.PatchIdentity, subtype entities.Subtype) ([]entities.ChangeRecord, error) {
	if note.AbilityID == sentinelID {
		return nil, nil
	}

	rec, err := entities.NewItemChange(patch, subtype, n.lookups.Item(note.AbilityID), JoinNotes(note.AbilityNotes))
	if err != nil {
		return nil, err
	}
	return []entities.ChangeRecord{rec}, nil
}

// NormalizeHero produces one record per ability and one per facet subsection.
// Entries with the sentinel hero id yield nothing.
func (n *Normalizer) NormalizeHero(note entities.HeroNote, patch entities.PatchIdentity) ([]entities.ChangeRecord, error) {
	if note.HeroID == sentinelID {
		return nil, nil
	}

	title := n.lookups.Hero(note.HeroID)
	records := make([]entities.ChangeRecord, 0, len(note.Abilities)+len(note.Subsections))

	for _, ability := range note.Abilities {
		rec, err := entities.NewHeroChange(patch, entities.SubtypeAbilities, title,
			n.lookups.Ability(ability.AbilityID), JoinNotes(ability.AbilityNotes))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	for _, sub := range note.Subsections {
		if !sub.HasFacet() {
			continue
		}
		rec, err := entities.NewHeroChange(patch, entities.SubtypeFacets, title, sub.Title, n.facetChanges(sub))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// facetChanges uses the subsection's general notes when present and falls
// back to its nested ability notes otherwise.
func (n *Normalizer) facetChanges(sub entities.HeroSubsection) string {
	if changes := JoinNotes(sub.GeneralNotes); changes != "" {
		return changes
	}

	var parts []string
	for _, ability := range sub.Abilities {
		name := n.lookups.Ability(ability.AbilityID)
		for _, line := range ability.AbilityNotes {
			parts = append(parts, name+": "+formatNote(line))
		}
	}
	return strings.Join(parts, " ")
}

// JoinNotes renders each note as "note(info)." or "note." and joins them with
// a single space. An empty input yields "".
func JoinNotes(notes []entities.NoteLine) string {
	parts := make([]string, 0, len(notes))
	for _, line := range notes {
		parts = append(parts, formatNote(line)+".")
	}
	return strings.Join(parts, " ")
}

func formatNote(line entities.NoteLine) string {
	if line.Info != "" {
		return line.Note + "(" + line.Info + ")"
	}
	return line.Note
}

// terminate appends a period unless the note already ends in punctuation.
func terminate(note string) string {
	trimmed := strings.TrimRight(note, " ")
	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
		return trimmed
	}
	return trimmed + "."
}
