package entities

// NotAvailable substitutes missing metadata values.
const NotAvailable = "N/A"

// Metadata field names as stored in the vector index.
const (
	FieldPatchNumber        = "patch_number"
	FieldPatchName          = "patch_name"
	FieldType               = "type"
	FieldSubtype            = "subtype"
	FieldTitle              = "title"
	FieldSkillName          = "skill_name"
	FieldOriginalChangeText = "original_change_text"
)

// Metadata is the structured part of a Document.
type Metadata struct {
	PatchNumber        string  `json:"patch_number"`
	PatchName          string  `json:"patch_name"`
	Type               string  `json:"type"`
	Subtype            string  `json:"subtype"`
	Title              string  `json:"title"`
	SkillName          *string `json:"skill_name,omitempty"`
	OriginalChangeText string  `json:"original_change_text"`
}

// Fields flattens the metadata into a string map. skill_name is omitted when
// the document has no skill.
func (m Metadata) Fields() map[string]string {
	fields := map[string]string{
		FieldPatchNumber:        m.PatchNumber,
		FieldPatchName:          m.PatchName,
		FieldType:               m.Type,
		FieldSubtype:            m.Subtype,
		FieldTitle:              m.Title,
		FieldOriginalChangeText: m.OriginalChangeText,
	}
	if m.SkillName != nil {
		fields[FieldSkillName] = *m.SkillName
	}
	return fields
}

// MetadataFromFields rebuilds Metadata from a flattened map.
func MetadataFromFields(fields map[string]string) Metadata {
	m := Metadata{
		PatchNumber:        fields[FieldPatchNumber],
		PatchName:          fields[FieldPatchName],
		Type:               fields[FieldType],
		Subtype:            fields[FieldSubtype],
		Title:              fields[FieldTitle],
		OriginalChangeText: fields[FieldOriginalChangeText],
	}
	if skill, ok := fields[FieldSkillName]; ok {
		m.SkillName = &skill
	}
	return m
}

// Document is the unit persisted to and retrieved from the vector index.
type Document struct {
	PageContent string   `json:"page_content"`
	Metadata    Metadata `json:"metadata"`
}

// EmbeddedDocument pairs a document with its embedding for storage.
type EmbeddedDocument struct {
	Document
	Embedding []float32
}

// RetrievedDocument is a document returned by similarity search.
type RetrievedDocument struct {
	Document
	Score float32 `json:"score"`
}
