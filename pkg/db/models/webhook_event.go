package models

import (
	"time"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

// WebhookEvent is the at-most-once gate for inbound payment events. The
// primary key is the provider's event id; the uniqueness constraint is what
// makes the first-sight insert atomic.
type WebhookEvent struct {
	EventID   string                   `gorm:"column:event_id;type:text;primaryKey"`
	EventType string                   `gorm:"column:event_type;type:text;not null"`
	Status    enums.WebhookEventStatus `gorm:"column:status;type:webhook_event_status;not null;default:'processing'"`
	Metadata  types.JSONMap            `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
