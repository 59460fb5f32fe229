package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

func TestBuildKitPromptIncludesAllRoleFields(t *testing.T) {
	intake := &types.Intake{
		Mode:             types.IntakeModeDetailed,
		RoleTitle:        "Staff SRE",
		Company:          "Acme",
		Mission:          "Keep the lights on.",
		Responsibilities: []string{"Own the pager"},
		Outcomes:         []string{"99.95% availability"},
		Competencies:     []string{"Incident response"},
		Level:            "staff",
		Style:            types.StyleSettings{Tone: "direct", Language: "en"},
	}

	prompt, err := BuildKitPrompt(intake)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Staff SRE")
	assert.Contains(t, prompt, "Acme")
	assert.Contains(t, prompt, "Keep the lights on.")
	assert.Contains(t, prompt, "Own the pager")
	assert.Contains(t, prompt, "99.95% availability")
	assert.Contains(t, prompt, "Incident response")
	assert.Contains(t, prompt, "direct")
	for _, key := range enums.AllSectionKeys() {
		assert.Contains(t, prompt, string(key))
	}
}

func TestBuildKitPromptOmitsEmptyFields(t *testing.T) {
	intake := &types.Intake{
		Mode:      types.IntakeModeExpress,
		RoleTitle: "Office Manager",
		Style:     types.StyleSettings{Tone: "professional", Language: "en"},
	}

	prompt, err := BuildKitPrompt(intake)
	require.NoError(t, err)
	assert.NotContains(t, prompt, "Company:")
	assert.NotContains(t, prompt, "Mission:")
	assert.NotContains(t, prompt, "Responsibilities:")
}

func TestBuildSectionPromptNamesTheSection(t *testing.T) {
	intake := &types.Intake{
		Mode:      types.IntakeModeExpress,
		RoleTitle: "Designer",
		Style:     types.StyleSettings{Tone: "professional", Language: "en"},
	}

	prompt, err := BuildSectionPrompt(intake, enums.SectionReferenceCheck)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Reference Check Script")
	assert.Contains(t, prompt, "reference_check")
}

func TestBuildSectionPromptRejectsUnknownKey(t *testing.T) {
	intake := &types.Intake{RoleTitle: "Designer"}
	_, err := BuildSectionPrompt(intake, enums.SectionKey("resume_review"))
	require.Error(t, err)
}

func TestBuildKitPromptRequiresIntake(t *testing.T) {
	_, err := BuildKitPrompt(nil)
	require.Error(t, err)
}
