package enums

import "fmt"

// KitStatus tracks the content lifecycle of a hiring kit.
type KitStatus string

const (
	KitStatusDraft      KitStatus = "draft"
	KitStatusGenerating KitStatus = "generating"
	KitStatusGenerated  KitStatus = "generated"
	KitStatusEditing    KitStatus = "editing"
	KitStatusPublished  KitStatus = "published"
)

var validKitStatuses = []KitStatus{
	KitStatusDraft,
	KitStatusGenerating,
	KitStatusGenerated,
	KitStatusEditing,
	KitStatusPublished,
}

// String implements fmt.Stringer.
func (k KitStatus) String() string {
	return string(k)
}

// IsValid reports whether the value is a known KitStatus.
func (k KitStatus) IsValid() bool {
	for _, candidate := range validKitStatuses {
		if candidate == k {
			return true
		}
	}
	return false
}

// HasContent reports whether generation has produced a full section set.
func (k KitStatus) HasContent() bool {
	switch k {
	case KitStatusGenerated, KitStatusEditing, KitStatusPublished:
		return true
	default:
		return false
	}
}

// ParseKitStatus converts raw input into a KitStatus.
func ParseKitStatus(value string) (KitStatus, error) {
	for _, candidate := range validKitStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid kit status %q", value)
}
