package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/patchrag/internal/domain/entities"
)

// PageContent renders a change record as the text that gets embedded.
func PageContent(rec entities.ChangeRecord) string {
	subtype := ""
	if rec.HasSubtype() {
		subtype = "(" + string(rec.Subtype) + ")"
	}
	skill := ""
	if rec.HasSkill() {
		skill = " - " + *rec.SkillName
	}
	return fmt.Sprintf(`Patch "%s" for %s%s: %s%s - %s`,
		rec.Patch.PatchName, rec.Type, subtype, rec.Title, skill, rec.Changes)
}

// DocumentBuilder converts change records into documents, dropping records
// that carry no change text.
type DocumentBuilder struct {
	logger *zap.Logger
}

// NewDocumentBuilder creates a document builder.
func NewDocumentBuilder(logger *zap.Logger) *DocumentBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentBuilder{logger: logger}
}

// Build returns the document for rec, or false if the record was dropped.
func (b *DocumentBuilder) Build(rec entities.ChangeRecord) (entities.Document, bool) {
	content := PageContent(rec)
	if content == "" || strings.TrimSpace(rec.Changes) == "" {
		b.logger.Warn("skipping record with empty changes",
			zap.String("title", rec.Title),
			zap.String("type", string(rec.Type)),
			zap.String("subtype", string(rec.Subtype)))
		return entities.Document{}, false
	}

	meta := entities.Metadata{
		PatchNumber:        orNotAvailable(rec.Patch.PatchNumber),
		PatchName:          orNotAvailable(rec.Patch.PatchName),
		Type:               orNotAvailable(string(rec.Type)),
		Subtype:            orNotAvailable(string(rec.Subtype)),
		Title:              orNotAvailable(rec.Title),
		OriginalChangeText: content,
	}
	if rec.HasSkill() {
		skill := *rec.SkillName
		meta.SkillName = &skill
	}

	return entities.Document{PageContent: content, Metadata: meta}, true
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return entities.NotAvailable
	}
	return s
}
