package entities

import "encoding/json"

// NoteLine is a single note as published in the patch notes feed.
type NoteLine struct {
	Note        string `json:"note"`
	Info        string `json:"info,omitempty"`
	IndentLevel int    `json:"indent_level,omitempty"`
}

// GeneralNote is a titled group of general (non hero, non item) notes.
type GeneralNote struct {
	Title   string     `json:"title,omitempty"`
	Generic []NoteLine `json:"generic"`
}

// ItemNote holds the notes for one item. AbilityID is -1 when the entry does
// not describe a real item.
type ItemNote struct {
	AbilityID    int        `json:"ability_id"`
	AbilityNotes []NoteLine `json:"ability_notes,omitempty"`
}

// AbilityNote holds the notes for one hero ability.
type AbilityNote struct {
	AbilityID    int        `json:"ability_id"`
	AbilityNotes []NoteLine `json:"ability_notes,omitempty"`
}

// HeroSubsection is a nested section of a hero entry, e.g. a facet.
type HeroSubsection struct {
	Facet        json.RawMessage `json:"facet,omitempty"`
	Title        string          `json:"title,omitempty"`
	GeneralNotes []NoteLine      `json:"general_notes,omitempty"`
	Abilities    []AbilityNote   `json:"abilities,omitempty"`
}

// HasFacet reports whether the subsection has a facet key. A JSON null value
// still counts.
func (s HeroSubsection) HasFacet() bool {
	return len(s.Facet) > 0
}

// HeroNote holds the notes for one hero. HeroID is -1 when no real hero is
// selected.
type HeroNote struct {
	HeroID      int              `json:"hero_id"`
	Abilities   []AbilityNote    `json:"abilities,omitempty"`
	Subsections []HeroSubsection `json:"subsections,omitempty"`
}

// PatchNotes is the patch notes payload for one version. Identity fields are
// pointers so a missing key can be told apart from an empty value.
type PatchNotes struct {
	PatchNumber    *string       `json:"patch_number"`
	PatchName      *string       `json:"patch_name"`
	PatchTimestamp int64         `json:"patch_timestamp,omitempty"`
	GeneralNotes   []GeneralNote `json:"general_notes,omitempty"`
	Items          []ItemNote    `json:"items,omitempty"`
	NeutralItems   []ItemNote    `json:"neutral_items,omitempty"`
	Heroes         []HeroNote    `json:"heroes,omitempty"`
}

// ReferenceEntry maps a numeric id to display names.
type ReferenceEntry struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	NameLoc string `json:"name_loc"`
}

// DisplayName returns the localized name. Entries without one resolve to "".
func (e ReferenceEntry) DisplayName() string {
	return e.NameLoc
}

// HeroList is the hero reference payload.
type HeroList struct {
	Result struct {
		Data struct {
			Heroes []ReferenceEntry `json:"heroes"`
		} `json:"data"`
	} `json:"result"`
}

// AbilityList is the reference payload for abilities and items. Both feeds
// publish their entries under "itemabilities".
type AbilityList struct {
	Result struct {
		Data struct {
			ItemAbilities []ReferenceEntry `json:"itemabilities"`
		} `json:"data"`
	} `json:"result"`
}

// RawNote is one raw record of a known category. Exactly one of General, Item
// or Hero is set, matching Category.
type RawNote struct {
	Category ChangeType
	Subtype  Subtype // item subtype, chosen by the caller per source list
	General  *GeneralNote
	Item     *ItemNote
	Hero     *HeroNote
}
