package enums

import "fmt"

// ExportKind selects the rendered artifact shape.
type ExportKind string

const (
	// ExportKindCombined is a single PDF: cover page plus all sections.
	ExportKindCombined ExportKind = "combined"
	// ExportKindArchive is a ZIP with one document per section.
	ExportKindArchive ExportKind = "archive"
)

var validExportKinds = []ExportKind{
	ExportKindCombined,
	ExportKindArchive,
}

// String implements fmt.Stringer.
func (e ExportKind) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExportKind.
func (e ExportKind) IsValid() bool {
	for _, candidate := range validExportKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExportKind converts raw input into an ExportKind.
func ParseExportKind(value string) (ExportKind, error) {
	for _, candidate := range validExportKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid export kind %q", value)
}
