package enums

import "fmt"

// AnalyticsEventType is the subset of domain events recorded in BigQuery.
// Values match the event_type attribute the outbox publisher stamps on
// Pub/Sub messages, so parsing doubles as the recorded-set filter.
type AnalyticsEventType string

const (
	AnalyticsEventOrderCreated       AnalyticsEventType = "order.created"
	AnalyticsEventOrderPaid          AnalyticsEventType = "order.paid"
	AnalyticsEventOrderQAPending     AnalyticsEventType = "order.qa_pending"
	AnalyticsEventOrderPaymentFailed AnalyticsEventType = "order.payment_failed"
	AnalyticsEventOrderReady         AnalyticsEventType = "order.ready"
	AnalyticsEventOrderDelivered     AnalyticsEventType = "order.delivered"
)

var validAnalyticsEventTypes = []AnalyticsEventType{
	AnalyticsEventOrderCreated,
	AnalyticsEventOrderPaid,
	AnalyticsEventOrderQAPending,
	AnalyticsEventOrderPaymentFailed,
	AnalyticsEventOrderReady,
	AnalyticsEventOrderDelivered,
}

// String implements fmt.Stringer.
func (a AnalyticsEventType) String() string {
	return string(a)
}

// IsValid reports whether the value is a recorded analytics event.
func (a AnalyticsEventType) IsValid() bool {
	for _, candidate := range validAnalyticsEventTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnalyticsEventType converts a published event_type attribute into an
// AnalyticsEventType. Domain events outside the recorded set fail to parse.
func ParseAnalyticsEventType(value string) (AnalyticsEventType, error) {
	for _, candidate := range validAnalyticsEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("event type %q is not recorded", value)
}
