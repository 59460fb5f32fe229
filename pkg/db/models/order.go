package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

// Order is one purchase transaction for exactly one kit.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	KitID             uuid.UUID         `gorm:"column:kit_id;type:uuid;not null"`
	CustomerEmail     string            `gorm:"column:customer_email;type:text;not null"`
	Status            enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'draft'"`
	AmountCents       int64             `gorm:"column:amount_cents;not null"`
	Currency          enums.Currency    `gorm:"column:currency;type:text;not null;default:'usd'"`
	PlanTier          enums.PlanTier    `gorm:"column:plan_tier;type:plan_tier;not null;default:'standard'"`
	CheckoutSessionID *string           `gorm:"column:checkout_session_id;type:text;uniqueIndex:ux_orders_checkout_session_id"`
	PaidAt            *time.Time        `gorm:"column:paid_at"`
	DeliveredAt       *time.Time        `gorm:"column:delivered_at"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
