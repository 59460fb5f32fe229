package router

import (
	"context"
	"fmt"

	"github.com/hirekitlabs/hirekit-backend/internal/analytics/types"
	analyticswriter "github.com/hirekitlabs/hirekit-backend/internal/analytics/writer"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox/payloads"
)

type orderTransitionHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderTransitionHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderTransitionHandler{writer: writer, logg: logg}
}

func (h *orderTransitionHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*payloads.OrderTransitionEvent)
	if !ok {
		return fmt.Errorf("invalid payload for %s", envelope.EventType)
	}

	fields := map[string]any{
		"event_type":   envelope.EventType,
		"order_id":     event.OrderID,
		"kit_id":       event.KitID,
		"status":       event.Status,
		"amount_cents": event.AmountCents,
	}
	logCtx := h.logg.WithFields(ctx, fields)

	row, err := buildOrderEventRow(envelope, event)
	if err != nil {
		h.logg.Error(logCtx, "failed to build order event row", err)
		return err
	}

	if err := h.writer.InsertOrderEvent(logCtx, row); err != nil {
		h.logg.Error(logCtx, "failed to insert order event row", err)
		return err
	}

	h.logg.Info(logCtx, "order transition recorded")
	return nil
}

func buildOrderEventRow(envelope types.Envelope, event *payloads.OrderTransitionEvent) (types.OrderEventRow, error) {
	orderID := uuidString(event.OrderID)
	if orderID == "" {
		orderID = envelope.AggregateID
	}
	if orderID == "" {
		return types.OrderEventRow{}, fmt.Errorf("order id missing for %s", envelope.EventType)
	}

	// Customer email never lands in BigQuery.
	scrubbed := *event
	scrubbed.CustomerEmail = ""
	payloadJSON, err := analyticswriter.EncodeJSON(scrubbed)
	if err != nil {
		return types.OrderEventRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	status := string(event.Status)
	if status == "" {
		status = string(envelope.EventType)
	}

	return types.OrderEventRow{
		EventID:        envelope.EventID,
		EventType:      string(envelope.EventType),
		OrderID:        orderID,
		KitID:          stringPtr(uuidString(event.KitID)),
		Status:         status,
		PreviousStatus: stringPtr(string(event.PreviousStatus)),
		AmountCents:    int64Ptr(event.AmountCents),
		Currency:       stringPtr(string(event.Currency)),
		PlanTier:       stringPtr(string(event.PlanTier)),
		OccurredAt:     envelope.OccurredAt,
		Payload:        payloadJSON,
	}, nil
}
