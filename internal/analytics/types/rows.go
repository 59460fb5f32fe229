package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// OrderEventRow mirrors the hirekit.order_events BigQuery schema. One row is
// appended per order status transition for funnel reporting.
type OrderEventRow struct {
	EventID        string             `bigquery:"event_id"`
	EventType      string             `bigquery:"event_type"`
	OrderID        string             `bigquery:"order_id"`
	KitID          *string            `bigquery:"kit_id"`
	Status         string             `bigquery:"status"`
	PreviousStatus *string            `bigquery:"previous_status"`
	AmountCents    *int64             `bigquery:"amount_cents"`
	Currency       *string            `bigquery:"currency"`
	PlanTier       *string            `bigquery:"plan_tier"`
	OccurredAt     time.Time          `bigquery:"occurred_at"`
	Payload        cbigquery.NullJSON `bigquery:"payload"`
}
