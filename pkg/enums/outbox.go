package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder  OutboxAggregateType = "order"
	AggregateKit    OutboxAggregateType = "kit"
	AggregateExport OutboxAggregateType = "export"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateKit,
	AggregateExport,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventStatus tracks relay progress of an outbox row.
type OutboxEventStatus string

const (
	OutboxStatusPending   OutboxEventStatus = "pending"
	OutboxStatusPublished OutboxEventStatus = "published"
	OutboxStatusFailed    OutboxEventStatus = "failed"
)

var validOutboxEventStatuses = []OutboxEventStatus{
	OutboxStatusPending,
	OutboxStatusPublished,
	OutboxStatusFailed,
}

// IsValid reports whether the value matches the canonical outbox status enum.
func (s OutboxEventStatus) IsValid() bool {
	for _, candidate := range validOutboxEventStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order.created"
	EventOrderPaid          OutboxEventType = "order.paid"
	EventOrderQAPending     OutboxEventType = "order.qa_pending"
	EventOrderPaymentFailed OutboxEventType = "order.payment_failed"
	EventOrderReady         OutboxEventType = "order.ready"
	EventOrderDelivered     OutboxEventType = "order.delivered"
	EventKitCreated         OutboxEventType = "kit.created"
	EventKitGenerated       OutboxEventType = "kit.generated"
	EventKitApproved        OutboxEventType = "kit.approved"
	EventExportCompleted    OutboxEventType = "export.completed"
	EventExportFailed       OutboxEventType = "export.failed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderPaid,
	EventOrderQAPending,
	EventOrderPaymentFailed,
	EventOrderReady,
	EventOrderDelivered,
	EventKitCreated,
	EventKitGenerated,
	EventKitApproved,
	EventExportCompleted,
	EventExportFailed,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
