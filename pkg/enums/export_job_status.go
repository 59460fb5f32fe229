package enums

import "fmt"

// ExportJobStatus tracks the async export job lifecycle.
type ExportJobStatus string

const (
	ExportJobStatusQueued     ExportJobStatus = "queued"
	ExportJobStatusProcessing ExportJobStatus = "processing"
	ExportJobStatusCompleted  ExportJobStatus = "completed"
	ExportJobStatusFailed     ExportJobStatus = "failed"
)

var validExportJobStatuses = []ExportJobStatus{
	ExportJobStatusQueued,
	ExportJobStatusProcessing,
	ExportJobStatusCompleted,
	ExportJobStatusFailed,
}

// String implements fmt.Stringer.
func (s ExportJobStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ExportJobStatus.
func (s ExportJobStatus) IsValid() bool {
	for _, candidate := range validExportJobStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the job can no longer change state.
func (s ExportJobStatus) IsTerminal() bool {
	return s == ExportJobStatusCompleted || s == ExportJobStatusFailed
}

// ParseExportJobStatus converts raw input into an ExportJobStatus.
func ParseExportJobStatus(value string) (ExportJobStatus, error) {
	for _, candidate := range validExportJobStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid export job status %q", value)
}
