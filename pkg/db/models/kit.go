package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

// Kit is one generated hiring-document bundle. Rows are never hard-deleted;
// generated content and the edited overlay live side by side so edits never
// destroy the original generation.
type Kit struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID   uuid.UUID         `gorm:"column:organization_id;type:uuid;not null"`
	CreatedBy        uuid.UUID         `gorm:"column:created_by;type:uuid;not null"`
	Title            string            `gorm:"column:title;type:text;not null"`
	Status           enums.KitStatus   `gorm:"column:status;type:kit_status;not null;default:'draft'"`
	Intake           *types.Intake     `gorm:"column:intake;type:jsonb;serializer:json"`
	GeneratedContent *types.KitContent `gorm:"column:generated_content;type:jsonb;serializer:json"`
	EditedContent    *types.KitContent `gorm:"column:edited_content;type:jsonb;serializer:json"`
	RegenCounts      types.JSONMap     `gorm:"column:regen_counts;type:jsonb;serializer:json"`
	RequiresReview   bool              `gorm:"column:requires_review;not null;default:false"`
	QANotes          *string           `gorm:"column:qa_notes"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// RegenCount returns the persisted counter for a section key.
func (k *Kit) RegenCount(key enums.SectionKey) int {
	if k == nil || k.RegenCounts == nil {
		return 0
	}
	switch v := k.RegenCounts[string(key)].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
