package stripewebhook

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

type orderTransitions interface {
	PaymentSucceeded(ctx context.Context, sessionID string) error
	PaymentFailed(ctx context.Context, sessionID string) error
}

// Service applies the payment outcome a Stripe event encodes to the order it
// references, behind the at-most-once gate.
type Service struct {
	gate   *Gate
	orders orderTransitions
	logger *logger.Logger
}

func NewService(gate *Gate, orders orderTransitions, logg *logger.Logger) (*Service, error) {
	if gate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook gate required")
	}
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order transitions required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{gate: gate, orders: orders, logger: logg}, nil
}

// HandleEvent admits the event through the gate and dispatches on its type.
// A completed duplicate returns nil without touching state; a duplicate
// still mid-flight returns an idempotency conflict. When processing fails
// the claim is released so the provider's redelivery can retry.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event required")
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"event_id":   event.ID,
		"event_type": string(event.Type),
	})

	proceed, err := s.gate.Begin(ctx, event.ID, string(event.Type), gateMetadata(event))
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Info(ctx, "duplicate webhook delivery acknowledged")
		return nil
	}

	if err := s.dispatch(ctx, event); err != nil {
		if failErr := s.gate.Fail(ctx, event.ID); failErr != nil {
			s.logger.Error(ctx, "release webhook claim", failErr)
		}
		return err
	}
	return s.gate.Complete(ctx, event.ID)
}

func (s *Service) dispatch(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		sessionID := sessionIDFromEvent(event)
		if sessionID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
		}
		return s.orders.PaymentSucceeded(ctx, sessionID)
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		sessionID := sessionIDFromEvent(event)
		if sessionID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
		}
		return s.orders.PaymentFailed(ctx, sessionID)
	default:
		s.logger.Info(ctx, "ignoring unhandled stripe event type")
		return nil
	}
}

func sessionIDFromEvent(event *stripe.Event) string {
	if event.Data == nil {
		return ""
	}
	return event.GetObjectValue("id")
}

func gateMetadata(event *stripe.Event) types.JSONMap {
	meta := types.JSONMap{"livemode": event.Livemode}
	if sessionID := sessionIDFromEvent(event); sessionID != "" {
		meta["session_id"] = sessionID
	}
	return meta
}
