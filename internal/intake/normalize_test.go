package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

func TestNormalizeExpress(t *testing.T) {
	out, err := Normalize(Input{
		Mode:      types.IntakeModeExpress,
		RoleTitle: "  Senior Backend Engineer  ",
		Company:   " Acme Robotics ",
	})
	require.NoError(t, err)
	assert.Equal(t, types.IntakeModeExpress, out.Mode)
	assert.Equal(t, "Senior Backend Engineer", out.RoleTitle)
	assert.Equal(t, "Acme Robotics", out.Company)
	assert.Equal(t, "professional", out.Style.Tone)
	assert.Equal(t, "en", out.Style.Language)
	assert.Empty(t, out.Responsibilities)
}

func TestNormalizeExpressIgnoresDetailedFields(t *testing.T) {
	out, err := Normalize(Input{
		Mode:             types.IntakeModeExpress,
		RoleTitle:        "Product Designer",
		Mission:          "should be dropped",
		Responsibilities: []string{"should be dropped"},
		Level:            "senior",
	})
	require.NoError(t, err)
	assert.Empty(t, out.Mission)
	assert.Empty(t, out.Responsibilities)
	assert.Empty(t, out.Level)
}

func TestNormalizeDetailed(t *testing.T) {
	out, err := Normalize(Input{
		Mode:      types.IntakeModeDetailed,
		RoleTitle: "Data Engineer",
		Mission:   "  Build the warehouse.  ",
		Responsibilities: []string{
			"  Own ELT pipelines ",
			"own elt pipelines",
			"",
			"Model core datasets",
		},
		Outcomes:     []string{"Ship v1 in Q2"},
		Competencies: []string{"SQL", "sql", "Airflow"},
		Level:        " Senior ",
		Style:        types.StyleSettings{Tone: "Friendly", Language: "EN"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Build the warehouse.", out.Mission)
	assert.Equal(t, []string{"Own ELT pipelines", "Model core datasets"}, out.Responsibilities)
	assert.Equal(t, []string{"Ship v1 in Q2"}, out.Outcomes)
	assert.Equal(t, []string{"SQL", "Airflow"}, out.Competencies)
	assert.Equal(t, "senior", out.Level)
	assert.Equal(t, "friendly", out.Style.Tone)
	assert.Equal(t, "en", out.Style.Language)
}

func TestNormalizeRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		input Input
	}{
		{"missing mode", Input{RoleTitle: "Engineer"}},
		{"unknown mode", Input{Mode: "quick", RoleTitle: "Engineer"}},
		{"empty title", Input{Mode: types.IntakeModeExpress, RoleTitle: "   "}},
		{"title too long", Input{Mode: types.IntakeModeExpress, RoleTitle: strings.Repeat("x", 2001)}},
		{"unknown level", Input{Mode: types.IntakeModeDetailed, RoleTitle: "Engineer", Level: "wizard"}},
		{"too many responsibilities", Input{
			Mode:             types.IntakeModeDetailed,
			RoleTitle:        "Engineer",
			Responsibilities: make([]string, 26),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.input)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestNormalizeDetailedEmptyListsStayNil(t *testing.T) {
	out, err := Normalize(Input{
		Mode:             types.IntakeModeDetailed,
		RoleTitle:        "Engineer",
		Responsibilities: []string{"  ", ""},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Responsibilities)
}
