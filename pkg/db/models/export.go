package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

// Export is a rendered artifact in object storage. Rows are immutable; a
// fresh row within the cache window is reused instead of re-rendering.
type Export struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	KitID      uuid.UUID        `gorm:"column:kit_id;type:uuid;not null;index:ix_exports_kit_kind"`
	Kind       enums.ExportKind `gorm:"column:kind;type:export_kind;not null;index:ix_exports_kit_kind"`
	StorageKey string           `gorm:"column:storage_key;type:text;not null"`
	SizeBytes  int64            `gorm:"column:size_bytes;not null"`
	Assets     []ExportAsset    `gorm:"foreignKey:ExportID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// ExportAsset is one per-section file inside an archive export. Fallback
// marks sections that degraded to a placeholder document.
type ExportAsset struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExportID   uuid.UUID        `gorm:"column:export_id;type:uuid;not null"`
	SectionKey enums.SectionKey `gorm:"column:section_key;type:text;not null"`
	StorageKey string           `gorm:"column:storage_key;type:text;not null"`
	SizeBytes  int64            `gorm:"column:size_bytes;not null"`
	Fallback   bool             `gorm:"column:fallback;not null;default:false"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}
