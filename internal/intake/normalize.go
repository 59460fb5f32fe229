package intake

import (
	"fmt"
	"strings"

	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

const (
	defaultTone     = "professional"
	defaultLanguage = "en"

	maxListEntries = 25
	maxFieldRunes  = 2000
)

var knownLevels = map[string]struct{}{
	"intern":    {},
	"junior":    {},
	"mid":       {},
	"senior":    {},
	"staff":     {},
	"principal": {},
	"lead":      {},
	"manager":   {},
	"director":  {},
	"executive": {},
}

// Input is the raw role description as submitted by the client. Express mode
// needs only a role title; detailed mode carries the full description.
type Input struct {
	Mode             types.IntakeMode    `json:"mode" validate:"required"`
	RoleTitle        string              `json:"role_title" validate:"required"`
	Company          string              `json:"company,omitempty"`
	Mission          string              `json:"mission,omitempty"`
	Responsibilities []string            `json:"responsibilities,omitempty"`
	Outcomes         []string            `json:"outcomes,omitempty"`
	Competencies     []string            `json:"competencies,omitempty"`
	Level            string              `json:"level,omitempty"`
	Style            types.StyleSettings `json:"style,omitempty"`
}

// Normalize validates and canonicalizes the raw intake. The result is what
// gets persisted on the kit row and fed to the generator, so every field is
// trimmed, list entries are deduplicated, and style settings are defaulted.
func Normalize(input Input) (*types.Intake, error) {
	if !input.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intake mode must be express or detailed")
	}

	title := strings.TrimSpace(input.RoleTitle)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role title is required")
	}
	if len([]rune(title)) > maxFieldRunes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role title is too long")
	}

	out := &types.Intake{
		Mode:      input.Mode,
		RoleTitle: title,
		Company:   strings.TrimSpace(input.Company),
		Style:     normalizeStyle(input.Style),
	}

	if input.Mode == types.IntakeModeExpress {
		return out, nil
	}

	out.Mission = strings.TrimSpace(input.Mission)
	if len([]rune(out.Mission)) > maxFieldRunes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mission is too long")
	}

	var err error
	if out.Responsibilities, err = normalizeList("responsibilities", input.Responsibilities); err != nil {
		return nil, err
	}
	if out.Outcomes, err = normalizeList("outcomes", input.Outcomes); err != nil {
		return nil, err
	}
	if out.Competencies, err = normalizeList("competencies", input.Competencies); err != nil {
		return nil, err
	}

	level := strings.ToLower(strings.TrimSpace(input.Level))
	if level != "" {
		if _, ok := knownLevels[level]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown seniority level %q", level))
		}
	}
	out.Level = level

	return out, nil
}

// normalizeList trims entries, drops empties, and removes case-insensitive
// duplicates while preserving the caller's order.
func normalizeList(field string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) > maxListEntries {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s accepts at most %d entries", field, maxListEntries))
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		entry := strings.TrimSpace(value)
		if entry == "" {
			continue
		}
		if len([]rune(entry)) > maxFieldRunes {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s entry is too long", field))
		}
		key := strings.ToLower(entry)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entry)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func normalizeStyle(style types.StyleSettings) types.StyleSettings {
	tone := strings.ToLower(strings.TrimSpace(style.Tone))
	if tone == "" {
		tone = defaultTone
	}
	language := strings.ToLower(strings.TrimSpace(style.Language))
	if language == "" {
		language = defaultLanguage
	}
	return types.StyleSettings{Tone: tone, Language: language}
}
