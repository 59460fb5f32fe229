package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

// ExportJob tracks one asynchronous export request end to end.
type ExportJob struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	KitID      uuid.UUID             `gorm:"column:kit_id;type:uuid;not null"`
	Kind       enums.ExportKind      `gorm:"column:kind;type:export_kind;not null"`
	Status     enums.ExportJobStatus `gorm:"column:status;type:export_job_status;not null;default:'queued'"`
	StorageKey *string               `gorm:"column:storage_key;type:text"`
	Error      *string               `gorm:"column:error"`
	Progress   int                   `gorm:"column:progress;not null;default:0"`
	StartedAt  *time.Time            `gorm:"column:started_at"`
	FinishedAt *time.Time            `gorm:"column:finished_at"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
