package enums

import "fmt"

// SectionKey identifies one document inside a hiring kit.
type SectionKey string

const (
	SectionScorecard       SectionKey = "scorecard"
	SectionJobPost         SectionKey = "job_post"
	SectionInterviewStage1 SectionKey = "interview_stage_1"
	SectionInterviewStage2 SectionKey = "interview_stage_2"
	SectionInterviewStage3 SectionKey = "interview_stage_3"
	SectionWorkSample      SectionKey = "work_sample"
	SectionReferenceCheck  SectionKey = "reference_check"
	SectionProcessMap      SectionKey = "process_map"
	SectionEEOGuidance     SectionKey = "eeo_guidance"
)

// sectionKeyOrder is the canonical document order for rendering and archives.
var sectionKeyOrder = []SectionKey{
	SectionScorecard,
	SectionJobPost,
	SectionInterviewStage1,
	SectionInterviewStage2,
	SectionInterviewStage3,
	SectionWorkSample,
	SectionReferenceCheck,
	SectionProcessMap,
	SectionEEOGuidance,
}

var sectionTitles = map[SectionKey]string{
	SectionScorecard:       "Scorecard",
	SectionJobPost:         "Job Post",
	SectionInterviewStage1: "Interview Guide: Stage 1",
	SectionInterviewStage2: "Interview Guide: Stage 2",
	SectionInterviewStage3: "Interview Guide: Stage 3",
	SectionWorkSample:      "Work Sample",
	SectionReferenceCheck:  "Reference Check Script",
	SectionProcessMap:      "Hiring Process Map",
	SectionEEOGuidance:     "EEO Guidance",
}

// AllSectionKeys returns the nine section keys in canonical order.
func AllSectionKeys() []SectionKey {
	keys := make([]SectionKey, len(sectionKeyOrder))
	copy(keys, sectionKeyOrder)
	return keys
}

// String implements fmt.Stringer.
func (s SectionKey) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SectionKey.
func (s SectionKey) IsValid() bool {
	_, ok := sectionTitles[s]
	return ok
}

// Title returns the human-readable document title for the key.
func (s SectionKey) Title() string {
	if title, ok := sectionTitles[s]; ok {
		return title
	}
	return string(s)
}

// ParseSectionKey converts raw input into a SectionKey.
func ParseSectionKey(value string) (SectionKey, error) {
	key := SectionKey(value)
	if !key.IsValid() {
		return "", fmt.Errorf("invalid section key %q", value)
	}
	return key, nil
}
