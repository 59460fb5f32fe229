package enums

import "fmt"

// OrderStatus tracks the lifecycle of a kit order.
type OrderStatus string

const (
	OrderStatusDraft           OrderStatus = "draft"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusQAPending       OrderStatus = "qa_pending"
	OrderStatusReady           OrderStatus = "ready"
	OrderStatusDelivered       OrderStatus = "delivered"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusAwaitingPayment,
	OrderStatusPaid,
	OrderStatusQAPending,
	OrderStatusReady,
	OrderStatusDelivered,
}

// PaidOrderStatuses are the statuses in which the order's payment has
// settled; they gate premium behavior such as unlimited regeneration.
var PaidOrderStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusQAPending,
	OrderStatusReady,
	OrderStatusDelivered,
}

// ExportableOrderStatuses are the statuses in which export is allowed.
var ExportableOrderStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusReady,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsPaidTier reports whether payment has settled for the order.
func (o OrderStatus) IsPaidTier() bool {
	for _, candidate := range PaidOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
