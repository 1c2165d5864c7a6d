package entities

import "strings"

// FilterableFields lists the metadata fields a Filter may constrain.
var FilterableFields = []string{
	FieldPatchName,
	FieldPatchNumber,
	FieldSkillName,
	FieldType,
	FieldSubtype,
	FieldTitle,
}

// Filter is a conjunction of exact-match constraints on document metadata.
// Empty fields are unconstrained.
type Filter struct {
	PatchName   string `json:"patch_name,omitempty"`
	PatchNumber string `json:"patch_number,omitempty"`
	SkillName   string `json:"skill_name,omitempty"`
	Type        string `json:"type,omitempty"`
	Subtype     string `json:"subtype,omitempty"`
	Title       string `json:"title,omitempty"`
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return len(f.Conditions()) == 0
}

// Conditions returns the constrained fields keyed by metadata field name.
func (f Filter) Conditions() map[string]string {
	conds := make(map[string]string, len(FilterableFields))
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			conds[key] = value
		}
	}
	set(FieldPatchName, f.PatchName)
	set(FieldPatchNumber, f.PatchNumber)
	set(FieldSkillName, f.SkillName)
	set(FieldType, f.Type)
	set(FieldSubtype, f.Subtype)
	set(FieldTitle, f.Title)
	return conds
}

// Matches reports whether the metadata satisfies every constraint.
func (f Filter) Matches(m Metadata) bool {
	fields := m.Fields()
	for key, want := range f.Conditions() {
		got, ok := fields[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// FilterFromConditions builds a Filter from field/value pairs, ignoring
// unknown fields.
func FilterFromConditions(conds map[string]string) Filter {
	return Filter{
		PatchName:   conds[FieldPatchName],
		PatchNumber: conds[FieldPatchNumber],
		SkillName:   conds[FieldSkillName],
		Type:        conds[FieldType],
		Subtype:     conds[FieldSubtype],
		Title:       conds[FieldTitle],
	}
}
