package exports

import (
	"fmt"
	"strings"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

// Document is the renderer input for one artifact.
type Document struct {
	Title    string            `json:"title"`
	Cover    *CoverPage        `json:"cover,omitempty"`
	Sections []SectionDocument `json:"sections"`
}

// CoverPage opens a combined export.
type CoverPage struct {
	Heading   string `json:"heading"`
	RoleTitle string `json:"role_title,omitempty"`
	Company   string `json:"company,omitempty"`
}

// SectionDocument is one section of a render document.
type SectionDocument struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Bullets []string `json:"bullets,omitempty"`
}

// BuildCombinedDocument assembles the cover page plus the nine sections in
// canonical order. A section with no content renders as a placeholder so the
// document shape never varies.
func BuildCombinedDocument(kit *models.Kit) Document {
	content := types.EffectiveContent(kit.GeneratedContent, kit.EditedContent)
	cover := &CoverPage{Heading: kit.Title}
	if kit.Intake != nil {
		cover.RoleTitle = kit.Intake.RoleTitle
		cover.Company = kit.Intake.Company
	}

	sections := make([]SectionDocument, 0, len(enums.AllSectionKeys()))
	for _, key := range enums.AllSectionKeys() {
		sections = append(sections, sectionDocument(key, content.Section(key)))
	}
	return Document{Title: kit.Title, Cover: cover, Sections: sections}
}

// BuildSectionDocument assembles the single-section document used for one
// archive entry.
func BuildSectionDocument(kit *models.Kit, key enums.SectionKey) Document {
	content := types.EffectiveContent(kit.GeneratedContent, kit.EditedContent)
	return Document{
		Title:    fmt.Sprintf("%s - %s", kit.Title, key.Title()),
		Sections: []SectionDocument{sectionDocument(key, content.Section(key))},
	}
}

func sectionDocument(key enums.SectionKey, doc *types.SectionDoc) SectionDocument {
	if doc == nil {
		return placeholderSection(key)
	}
	out := SectionDocument{Key: string(key), Title: doc.Title, Body: doc.Body}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = key.Title()
	}
	if len(doc.Bullets) > 0 {
		out.Bullets = make([]string, len(doc.Bullets))
		copy(out.Bullets, doc.Bullets)
	}
	return out
}

func placeholderSection(key enums.SectionKey) SectionDocument {
	return SectionDocument{
		Key:   string(key),
		Title: key.Title(),
		Body:  "This section is not available yet.",
	}
}
