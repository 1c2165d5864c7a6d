// Package entities contains core domain data structures.
package entities

import (
	"errors"
	"fmt"
)

// ErrInvalidChangeRecord is returned when a change record's type and subtype
// do not form a known bucket.
var ErrInvalidChangeRecord = errors.New("invalid change record")

// ChangeType is the top-level category of a patch change.
type ChangeType string

// Known change types. The set is closed.
const (
	ChangeTypeGeneric ChangeType = "generic"
	ChangeTypeItems   ChangeType = "items"
	ChangeTypeHeroes  ChangeType = "heroes"
)

// Subtype narrows a ChangeType. Generic changes carry no subtype.
type Subtype string

// Known subtypes.
const (
	SubtypeNone         Subtype = ""
	SubtypeHeroItems    Subtype = "hero_items"
	SubtypeNeutralItems Subtype = "neutral_items"
	SubtypeAbilities    Subtype = "abilities"
	SubtypeFacets       Subtype = "facets"
)

// DefaultGeneralTitle is used for general notes that carry no title.
const DefaultGeneralTitle = "Generic Changes"

// subtypesByType lists the subtypes each change type accepts.
var subtypesByType = map[ChangeType][]Subtype{
	ChangeTypeGeneric: {SubtypeNone},
	ChangeTypeItems:   {SubtypeHeroItems, SubtypeNeutralItems},
	ChangeTypeHeroes:  {SubtypeAbilities, SubtypeFacets},
}

// ValidBucket reports whether (t, s) is one of the known (type, subtype) pairs.
func ValidBucket(t ChangeType, s Subtype) bool {
	for _, allowed := range subtypesByType[t] {
		if allowed == s {
			return true
		}
	}
	return false
}

// IsChangeType reports whether s names a known change type.
func IsChangeType(s string) bool {
	_, ok := subtypesByType[ChangeType(s)]
	return ok
}

// IsSubtype reports whether s names a known, non-empty subtype.
func IsSubtype(s string) bool {
	switch Subtype(s) {
	case SubtypeHeroItems, SubtypeNeutralItems, SubtypeAbilities, SubtypeFacets:
		return true
	}
	return false
}

// PatchIdentity identifies the patch a change belongs to.
type PatchIdentity struct {
	PatchNumber string `json:"patch_number"`
	PatchName   string `json:"patch_name"`
}

// ChangeRecord is one normalized change extracted from raw patch notes.
type ChangeRecord struct {
	Type      ChangeType    `json:"type"`
	Subtype   Subtype       `json:"subtype,omitempty"`
	Title     string        `json:"title"`
	SkillName *string       `json:"skill_name,omitempty"` // Pointer to distinguish "no skill" from an unresolved one
	Changes   string        `json:"changes"`
	Patch     PatchIdentity `json:"patch_metadata"`
}

// NewGenericChange creates a change record for general notes.
func NewGenericChange(patch PatchIdentity, title, changes string) ChangeRecord {
	return ChangeRecord{
		Type:    ChangeTypeGeneric,
		Title:   title,
		Changes: changes,
		Patch:   patch,
	}
}

// NewItemChange creates a change record for an item. subtype must be one of
// the item subtypes.
func NewItemChange(patch PatchIdentity, subtype Subtype, title, changes string) (ChangeRecord, error) {
	rec := ChangeRecord{
		Type:    ChangeTypeItems,
		Subtype: subtype,
		Title:   title,
		Changes: changes,
		Patch:   patch,
	}
	if err := rec.Validate(); err != nil {
		return ChangeRecord{}, err
	}
	return rec, nil
}

// NewHeroChange creates a change record for a hero ability or facet.
func NewHeroChange(patch PatchIdentity, subtype Subtype, title, skillName, changes string) (ChangeRecord, error) {
	rec := ChangeRecord{
		Type:      ChangeTypeHeroes,
		Subtype:   subtype,
		Title:     title,
		SkillName: &skillName,
		Changes:   changes,
		Patch:     patch,
	}
	if err := rec.Validate(); err != nil {
		return ChangeRecord{}, err
	}
	return rec, nil
}

// Validate checks that the record belongs to exactly one known bucket.
func (r ChangeRecord) Validate() error {
	if !ValidBucket(r.Type, r.Subtype) {
		return fmt.Errorf("%w: type %q with subtype %q", ErrInvalidChangeRecord, r.Type, r.Subtype)
	}
	return nil
}

// HasSubtype reports whether the record carries a subtype.
func (r ChangeRecord) HasSubtype() bool {
	return r.Subtype != SubtypeNone
}

// HasSkill reports whether the record carries a skill name, even an empty one.
func (r ChangeRecord) HasSkill() bool {
	return r.SkillName != nil
}
