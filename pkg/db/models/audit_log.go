package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

// AuditLog is an append-only record of a state change. A nil actor means the
// change came from the system or a webhook.
type AuditLog struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   *uuid.UUID        `gorm:"column:order_id;type:uuid;index"`
	KitID     *uuid.UUID        `gorm:"column:kit_id;type:uuid;index"`
	ActorID   *uuid.UUID        `gorm:"column:actor_id;type:uuid"`
	Action    enums.AuditAction `gorm:"column:action;type:text;not null"`
	Before    types.JSONMap     `gorm:"column:before;type:jsonb;serializer:json"`
	After     types.JSONMap     `gorm:"column:after;type:jsonb;serializer:json"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
