package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

// Response is the public shape of an order. Amounts stay in minor units;
// AmountDisplay carries the formatted major-unit price for client rendering.
type Response struct {
	ID                uuid.UUID         `json:"id"`
	KitID             uuid.UUID         `json:"kit_id"`
	CustomerEmail     string            `json:"customer_email"`
	Status            enums.OrderStatus `json:"status"`
	AmountCents       int64             `json:"amount_cents"`
	AmountDisplay     string            `json:"amount_display"`
	Currency          enums.Currency    `json:"currency"`
	PlanTier          enums.PlanTier    `json:"plan_tier"`
	CheckoutSessionID *string           `json:"checkout_session_id,omitempty"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	DeliveredAt       *time.Time        `json:"delivered_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ListResponse wraps one page of orders plus the next page cursor.
type ListResponse struct {
	Orders     []Response `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewResponse maps a persisted order to its public shape.
func NewResponse(order models.Order) Response {
	return Response{
		ID:                order.ID,
		KitID:             order.KitID,
		CustomerEmail:     order.CustomerEmail,
		Status:            order.Status,
		AmountCents:       order.AmountCents,
		AmountDisplay:     DisplayAmount(order.AmountCents),
		Currency:          order.Currency,
		PlanTier:          order.PlanTier,
		CheckoutSessionID: order.CheckoutSessionID,
		PaidAt:            order.PaidAt,
		DeliveredAt:       order.DeliveredAt,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

// NewListResponse maps a repository page to its public shape.
func NewListResponse(result ListResult) ListResponse {
	out := ListResponse{
		Orders:     make([]Response, 0, len(result.Orders)),
		NextCursor: result.NextCursor,
	}
	for _, order := range result.Orders {
		out.Orders = append(out.Orders, NewResponse(order))
	}
	return out
}

// DisplayAmount formats minor units as a major-unit decimal string, e.g.
// 4900 -> "49.00".
func DisplayAmount(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
