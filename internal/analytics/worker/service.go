package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/hirekitlabs/hirekit-backend/internal/analytics/router"
	"github.com/hirekitlabs/hirekit-backend/internal/analytics/types"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox"
	"github.com/google/uuid"
)

// analyticsConsumerName namespaces the Redis processed marks so a replayed
// event is skipped by this worker without touching other consumers.
const analyticsConsumerName = "analytics"

// Handler processes a decoded analytics envelope.
type Handler interface {
	Handle(ctx context.Context, envelope types.Envelope) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, envelope types.Envelope) error

func (fn HandlerFunc) Handle(ctx context.Context, envelope types.Envelope) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, envelope)
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Service drains the analytics subscription and routes order transition
// events into BigQuery, deduplicating on event id.
type Service struct {
	subscription *gcppubsub.Subscriber
	handler      Handler
	manager      idempotencyChecker
	logg         *logger.Logger
}

// NewService wires the worker. All dependencies are mandatory.
func NewService(subscription *gcppubsub.Subscriber, handler Handler, manager idempotencyChecker, logg *logger.Logger) (*Service, error) {
	switch {
	case subscription == nil:
		return nil, errors.New("analytics subscription is required")
	case handler == nil:
		return nil, errors.New("analytics handler is required")
	case manager == nil:
		return nil, errors.New("idempotency manager is required")
	case logg == nil:
		return nil, errors.New("logger is required")
	}

	return &Service{
		subscription: subscription,
		handler:      handler,
		manager:      manager,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run blocks on the subscription until ctx is canceled. Each message is
// acked unless process asks for redelivery.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := s.logg.WithFields(ctx, fields)

	// The subscription sees every domain event; only order transitions are
	// recorded, so the rest is acked before the body is decoded.
	eventType, err := enums.ParseAnalyticsEventType(attr(msg, "event_type"))
	if err != nil {
		fields["event_type"] = msg.Attributes["event_type"]
		s.logg.Info(logCtx, "skipping event outside the recorded set")
		return processResult{}
	}

	envelope, err := s.buildEnvelope(eventType, msg)
	if err != nil {
		fields["error"] = err.Error()
		s.logg.Warn(logCtx, "invalid analytics envelope")
		return processResult{}
	}
	fields["event_id"] = envelope.EventID
	fields["event_type"] = envelope.EventType
	fields["aggregate_type"] = envelope.AggregateType
	fields["aggregate_id"] = envelope.AggregateID
	fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	logCtx = s.logg.WithFields(ctx, fields)

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		s.logg.Warn(logCtx, "invalid event id")
		return processResult{}
	}

	already, err := s.manager.CheckAndMarkProcessed(logCtx, analyticsConsumerName, eventID)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		s.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	if err := s.handler.Handle(logCtx, *envelope); err != nil {
		if errors.Is(err, router.ErrUnsupportedEventType) {
			// Redelivery cannot fix a missing handler; the processed mark
			// stays so the event is skipped for good.
			s.logg.Warn(logCtx, "no handler registered for event")
			return processResult{}
		}
		// Clear the mark before nacking so the redelivered copy is not
		// mistaken for a duplicate.
		s.logg.Error(logCtx, "handler error", err)
		_ = s.manager.Delete(logCtx, analyticsConsumerName, eventID)
		return processResult{nack: true}
	}

	s.logg.Info(logCtx, "analytics event handled")
	return processResult{}
}

// buildEnvelope reconstructs a typed envelope from the stored outbox payload
// plus the attributes the relay stamped on publish. Attribute values win
// only where the payload is silent.
func (s *Service) buildEnvelope(eventType enums.AnalyticsEventType, msg *gcppubsub.Message) (*types.Envelope, error) {
	var stored outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &stored); err != nil {
		return nil, fmt.Errorf("decode payload envelope: %w", err)
	}

	aggregateType, err := enums.ParseOutboxAggregateType(attr(msg, "aggregate_type"))
	if err != nil {
		return nil, fmt.Errorf("aggregate_type: %w", err)
	}

	aggregateID := attr(msg, "aggregate_id")
	if aggregateID == "" {
		return nil, errors.New("aggregate_id missing")
	}

	eventID := strings.TrimSpace(stored.EventID)
	if eventID == "" {
		eventID = attr(msg, "event_id")
	}
	if eventID == "" {
		return nil, errors.New("event_id missing")
	}

	return &types.Envelope{
		EventID:       eventID,
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		OccurredAt:    resolveOccurredAt(stored.OccurredAt, msg),
		Payload:       stored.Data,
	}, nil
}

// resolveOccurredAt prefers the payload timestamp and falls back to the
// created_at attribute when the payload carries none.
func resolveOccurredAt(stored time.Time, msg *gcppubsub.Message) time.Time {
	if !stored.IsZero() {
		return stored.UTC()
	}
	if created := attr(msg, "created_at"); created != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
			return parsed.UTC()
		}
	}
	return stored.UTC()
}

func attr(msg *gcppubsub.Message, key string) string {
	return strings.TrimSpace(msg.Attributes[key])
}
