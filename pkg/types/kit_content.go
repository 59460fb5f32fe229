package types

import (
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

// SectionDoc is one generated document of a kit.
type SectionDoc struct {
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Bullets []string          `json:"bullets,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Clone returns a deep copy of the document.
func (d *SectionDoc) Clone() *SectionDoc {
	if d == nil {
		return nil
	}
	out := SectionDoc{Title: d.Title, Body: d.Body}
	if len(d.Bullets) > 0 {
		out.Bullets = make([]string, len(d.Bullets))
		copy(out.Bullets, d.Bullets)
	}
	if len(d.Meta) > 0 {
		out.Meta = make(map[string]string, len(d.Meta))
		for k, v := range d.Meta {
			out.Meta[k] = v
		}
	}
	return &out
}

// KitContent holds one optional document per section key. Keeping each
// section a named field rather than a map keeps unknown keys out of the
// persisted JSON.
type KitContent struct {
	Scorecard       *SectionDoc `json:"scorecard,omitempty"`
	JobPost         *SectionDoc `json:"job_post,omitempty"`
	InterviewStage1 *SectionDoc `json:"interview_stage_1,omitempty"`
	InterviewStage2 *SectionDoc `json:"interview_stage_2,omitempty"`
	InterviewStage3 *SectionDoc `json:"interview_stage_3,omitempty"`
	WorkSample      *SectionDoc `json:"work_sample,omitempty"`
	ReferenceCheck  *SectionDoc `json:"reference_check,omitempty"`
	ProcessMap      *SectionDoc `json:"process_map,omitempty"`
	EEOGuidance     *SectionDoc `json:"eeo_guidance,omitempty"`
}

// Section returns the document stored under key, or nil.
func (c *KitContent) Section(key enums.SectionKey) *SectionDoc {
	if c == nil {
		return nil
	}
	switch key {
	case enums.SectionScorecard:
		return c.Scorecard
	case enums.SectionJobPost:
		return c.JobPost
	case enums.SectionInterviewStage1:
		return c.InterviewStage1
	case enums.SectionInterviewStage2:
		return c.InterviewStage2
	case enums.SectionInterviewStage3:
		return c.InterviewStage3
	case enums.SectionWorkSample:
		return c.WorkSample
	case enums.SectionReferenceCheck:
		return c.ReferenceCheck
	case enums.SectionProcessMap:
		return c.ProcessMap
	case enums.SectionEEOGuidance:
		return c.EEOGuidance
	default:
		return nil
	}
}

func (c *KitContent) setSection(key enums.SectionKey, doc *SectionDoc) {
	switch key {
	case enums.SectionScorecard:
		c.Scorecard = doc
	case enums.SectionJobPost:
		c.JobPost = doc
	case enums.SectionInterviewStage1:
		c.InterviewStage1 = doc
	case enums.SectionInterviewStage2:
		c.InterviewStage2 = doc
	case enums.SectionInterviewStage3:
		c.InterviewStage3 = doc
	case enums.SectionWorkSample:
		c.WorkSample = doc
	case enums.SectionReferenceCheck:
		c.ReferenceCheck = doc
	case enums.SectionProcessMap:
		c.ProcessMap = doc
	case enums.SectionEEOGuidance:
		c.EEOGuidance = doc
	}
}

// IsComplete reports whether all nine sections are present.
func (c *KitContent) IsComplete() bool {
	if c == nil {
		return false
	}
	for _, key := range enums.AllSectionKeys() {
		if c.Section(key) == nil {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the content set.
func (c *KitContent) Clone() *KitContent {
	if c == nil {
		return nil
	}
	out := &KitContent{}
	for _, key := range enums.AllSectionKeys() {
		out.setSection(key, c.Section(key).Clone())
	}
	return out
}

// Merge returns a copy of overlay with exactly the given key replaced by doc.
// A nil overlay starts from an empty content set; every other key is left
// untouched.
func Merge(overlay *KitContent, key enums.SectionKey, doc *SectionDoc) *KitContent {
	out := overlay.Clone()
	if out == nil {
		out = &KitContent{}
	}
	out.setSection(key, doc.Clone())
	return out
}

// EffectiveSection resolves one section: the edited overlay wins when it has
// the key, otherwise the generated document is used.
func EffectiveSection(generated, edited *KitContent, key enums.SectionKey) *SectionDoc {
	if doc := edited.Section(key); doc != nil {
		return doc
	}
	return generated.Section(key)
}

// EffectiveContent resolves the full section set the reader should see.
func EffectiveContent(generated, edited *KitContent) *KitContent {
	out := &KitContent{}
	for _, key := range enums.AllSectionKeys() {
		out.setSection(key, EffectiveSection(generated, edited, key).Clone())
	}
	return out
}
