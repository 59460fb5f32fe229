package payloads

import (
	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

// OrderTransitionEvent is emitted for every order status change. It carries
// enough context for the notification and analytics consumers to act without
// a read back to Postgres.
type OrderTransitionEvent struct {
	OrderID        uuid.UUID         `json:"order_id"`
	KitID          uuid.UUID         `json:"kit_id"`
	KitTitle       string            `json:"kit_title,omitempty"`
	CustomerEmail  string            `json:"customer_email"`
	Status         enums.OrderStatus `json:"status"`
	PreviousStatus enums.OrderStatus `json:"previous_status,omitempty"`
	AmountCents    int64             `json:"amount_cents"`
	Currency       enums.Currency    `json:"currency"`
	PlanTier       enums.PlanTier    `json:"plan_tier"`
}

// KitLifecycleEvent reports kit creation and generation outcomes.
type KitLifecycleEvent struct {
	KitID  uuid.UUID       `json:"kit_id"`
	Title  string          `json:"title"`
	Status enums.KitStatus `json:"status"`
}

// KitApprovedEvent is emitted when an admin publishes a reviewed kit.
type KitApprovedEvent struct {
	KitID         uuid.UUID `json:"kit_id"`
	OrderID       uuid.UUID `json:"order_id"`
	Title         string    `json:"title"`
	CustomerEmail string    `json:"customer_email"`
}

// ExportLifecycleEvent reports async export completions and failures.
type ExportLifecycleEvent struct {
	ExportJobID uuid.UUID        `json:"export_job_id"`
	KitID       uuid.UUID        `json:"kit_id"`
	Kind        enums.ExportKind `json:"kind"`
	StorageKey  string           `json:"storage_key,omitempty"`
	Error       string           `json:"error,omitempty"`
}
