package generation

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

//go:embed prompts/kit_prompt.md
var kitPromptRaw string

//go:embed prompts/section_prompt.md
var sectionPromptRaw string

// Templates are parsed once at package init and reused on every call.
var (
	kitPromptTemplate     = template.Must(template.New("kit_prompt").Parse(kitPromptRaw))
	sectionPromptTemplate = template.Must(template.New("section_prompt").Parse(sectionPromptRaw))
)

type promptData struct {
	RoleTitle        string
	Company          string
	Mission          string
	Level            string
	Responsibilities []string
	Outcomes         []string
	Competencies     []string
	Tone             string
	Language         string
	SectionKey       string
	SectionTitle     string
}

func newPromptData(intake *types.Intake) promptData {
	return promptData{
		RoleTitle:        intake.RoleTitle,
		Company:          intake.Company,
		Mission:          intake.Mission,
		Level:            intake.Level,
		Responsibilities: intake.Responsibilities,
		Outcomes:         intake.Outcomes,
		Competencies:     intake.Competencies,
		Tone:             intake.Style.Tone,
		Language:         intake.Style.Language,
	}
}

// BuildKitPrompt renders the full nine-document generation prompt.
func BuildKitPrompt(intake *types.Intake) (string, error) {
	if intake == nil {
		return "", fmt.Errorf("intake is required")
	}
	var out strings.Builder
	if err := kitPromptTemplate.Execute(&out, newPromptData(intake)); err != nil {
		return "", fmt.Errorf("render kit prompt: %w", err)
	}
	return out.String(), nil
}

// BuildSectionPrompt renders the single-document regeneration prompt.
func BuildSectionPrompt(intake *types.Intake, key enums.SectionKey) (string, error) {
	if intake == nil {
		return "", fmt.Errorf("intake is required")
	}
	if !key.IsValid() {
		return "", fmt.Errorf("invalid section key %q", key)
	}
	data := newPromptData(intake)
	data.SectionKey = string(key)
	data.SectionTitle = key.Title()
	var out strings.Builder
	if err := sectionPromptTemplate.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render section prompt: %w", err)
	}
	return out.String(), nil
}
