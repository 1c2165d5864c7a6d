package services

import "github.com/ersonp/patchrag/internal/domain/entities"

// Lookups resolves reference ids to display names. It is built once per
// ingestion run and never modified afterwards.
type Lookups struct {
	heroes    map[int]string
	abilities map[int]string
	items     map[int]string
}

// NewLookups builds the id to name tables from the reference payloads. Any of
// the payloads may be nil.
func NewLookups(heroes *entities.HeroList, abilities, items *entities.AbilityList) *Lookups {
	l := &Lookups{
		heroes:    map[int]string{},
		abilities: map[int]string{},
		items:     map[int]string{},
	}
	if heroes != nil {
		indexEntries(l.heroes, heroes.Result.Data.Heroes)
	}
	if abilities != nil {
		indexEntries(l.abilities, abilities.Result.Data.ItemAbilities)
	}
	if items != nil {
		indexEntries(l.items, items.Result.Data.ItemAbilities)
	}
	return l
}

func indexEntries(dst map[int]string, entries []entities.ReferenceEntry) {
	for _, e := range entries {
		dst[e.ID] = e.DisplayName()
	}
}

// Hero returns the hero's display name, or "" if unknown.
func (l *Lookups) Hero(id int) string {
	if l == nil {
		return ""
	}
	return l.heroes[id]
}

// Ability returns the ability's display name, or "" if unknown.
func (l *Lookups) Ability(id int) string {
	if l == nil {
		return ""
	}
	return l.abilities[id]
}

// Item returns the item's display name, or "" if unknown.
func (l *Lookups) Item(id int) string {
	if l == nil {
		return ""
	}
	return l.items[id]
}
