package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hirekitlabs/hirekit-backend/internal/analytics/types"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

func TestRouterUnsupportedEvent(t *testing.T) {
	router := newTestRouter(t, nil)
	env := types.Envelope{
		EventType: enums.AnalyticsEventType("unsupported"),
		Payload:   []byte(`{"foo":"bar"}`),
	}
	err := router.Handle(context.Background(), env)
	if !errors.Is(err, ErrUnsupportedEventType) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestRouterEmptyPayload(t *testing.T) {
	router := newTestRouter(t, nil)
	env := types.Envelope{
		EventType: enums.AnalyticsEventOrderPaid,
	}
	if err := router.Handle(context.Background(), env); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestRouterRoutesToOverride(t *testing.T) {
	handler := &stubHandler{}
	router := newTestRouter(t, map[enums.AnalyticsEventType]Handler{
		enums.AnalyticsEventOrderPaid: handler,
	})
	data, _ := json.Marshal(payloads.OrderTransitionEvent{
		OrderID: uuid.New(),
		Status:  enums.OrderStatusPaid,
	})
	env := types.Envelope{
		EventType: enums.AnalyticsEventOrderPaid,
		Payload:   data,
	}
	if err := router.Handle(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handler.called {
		t.Fatal("handler not invoked")
	}
	if _, ok := handler.payload.(*payloads.OrderTransitionEvent); !ok {
		t.Fatalf("unexpected payload type %T", handler.payload)
	}
}

func TestRouterRecordsEveryOrderTransition(t *testing.T) {
	writer := &fakeWriter{}
	router, err := NewRouter(writer, logger.New(logger.Options{ServiceName: "router-test"}), nil)
	if err != nil {
		t.Fatalf("construct router: %v", err)
	}

	events := []enums.AnalyticsEventType{
		enums.AnalyticsEventOrderCreated,
		enums.AnalyticsEventOrderPaid,
		enums.AnalyticsEventOrderQAPending,
		enums.AnalyticsEventOrderPaymentFailed,
		enums.AnalyticsEventOrderReady,
		enums.AnalyticsEventOrderDelivered,
	}
	data, _ := json.Marshal(payloads.OrderTransitionEvent{OrderID: uuid.New()})
	for _, eventType := range events {
		env := types.Envelope{
			EventID:   uuid.NewString(),
			EventType: eventType,
			Payload:   data,
		}
		if err := router.Handle(context.Background(), env); err != nil {
			t.Fatalf("handle %s: %v", eventType, err)
		}
	}
	if len(writer.inserted) != len(events) {
		t.Fatalf("expected %d rows, got %d", len(events), len(writer.inserted))
	}
}

func newTestRouter(t *testing.T, overrides map[enums.AnalyticsEventType]Handler) *Router {
	t.Helper()
	writer := &fakeWriter{}
	router, err := NewRouter(writer, logger.New(logger.Options{ServiceName: "router-test"}), overrides)
	if err != nil {
		t.Fatalf("construct router: %v", err)
	}
	return router
}

type stubHandler struct {
	called  bool
	payload any
}

func (s *stubHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	s.called = true
	s.payload = payload
	return nil
}

type fakeWriter struct {
	inserted []types.OrderEventRow
	err      error
}

func (f *fakeWriter) InsertOrderEvent(_ context.Context, row types.OrderEventRow) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, row)
	return nil
}
