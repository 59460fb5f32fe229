package types

// IntakeMode selects how much detail the caller supplied.
type IntakeMode string

const (
	// IntakeModeExpress needs only a role title; everything else is inferred.
	IntakeModeExpress IntakeMode = "express"
	// IntakeModeDetailed carries the full role description.
	IntakeModeDetailed IntakeMode = "detailed"
)

// IsValid reports whether the mode is recognized.
func (m IntakeMode) IsValid() bool {
	return m == IntakeModeExpress || m == IntakeModeDetailed
}

// StyleSettings tune the voice of generated content.
type StyleSettings struct {
	Tone     string `json:"tone"`
	Language string `json:"language"`
}

// Intake is the normalized role description persisted on the kit row.
type Intake struct {
	Mode             IntakeMode    `json:"mode"`
	RoleTitle        string        `json:"role_title"`
	Company          string        `json:"company,omitempty"`
	Mission          string        `json:"mission,omitempty"`
	Responsibilities []string      `json:"responsibilities,omitempty"`
	Outcomes         []string      `json:"outcomes,omitempty"`
	Competencies     []string      `json:"competencies,omitempty"`
	Level            string        `json:"level,omitempty"`
	Style            StyleSettings `json:"style"`
}
