package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/internal/audit"
	"github.com/hirekitlabs/hirekit-backend/internal/kits"
	"github.com/hirekitlabs/hirekit-backend/internal/orders"
	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox/payloads"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type auditAppender interface {
	AppendTx(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

// Service bridges kit purchases to Stripe Checkout. The order row is created
// awaiting_payment with the session reference attached, so the payment webhook
// can resolve the settlement back to the order by session id alone.
type Service interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*SessionResponse, error)
	Plans() []Plan
}

// CreateSessionInput carries the purchase request.
type CreateSessionInput struct {
	KitID         uuid.UUID
	Tier          enums.PlanTier
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	ActorID       uuid.UUID
}

// SessionResponse is returned to the client for redirecting to Stripe.
type SessionResponse struct {
	OrderID       uuid.UUID      `json:"order_id"`
	SessionID     string         `json:"session_id"`
	RedirectURL   string         `json:"redirect_url"`
	AmountCents   int64          `json:"amount_cents"`
	AmountDisplay string         `json:"amount_display"`
	Currency      enums.Currency `json:"currency"`
	PlanTier      enums.PlanTier `json:"plan_tier"`
}

type service struct {
	kits    kits.Repository
	orders  orders.Repository
	stripe  StripeSessionClient
	catalog Catalog
	tx      txRunner
	outbox  outboxEmitter
	audit   auditAppender
}

// NewService builds the checkout service with the required collaborators.
func NewService(kitRepo kits.Repository, orderRepo orders.Repository, stripeClient StripeSessionClient, catalog Catalog, tx txRunner, emitter outboxEmitter, recorder auditAppender) (Service, error) {
	if kitRepo == nil {
		return nil, fmt.Errorf("kits repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if stripeClient == nil {
		return nil, fmt.Errorf("stripe session client required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		kits:    kitRepo,
		orders:  orderRepo,
		stripe:  stripeClient,
		catalog: catalog,
		tx:      tx,
		outbox:  emitter,
		audit:   recorder,
	}, nil
}

func (s *service) CreateSession(ctx context.Context, input CreateSessionInput) (*SessionResponse, error) {
	if input.KitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kit id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	email := strings.TrimSpace(strings.ToLower(input.CustomerEmail))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if strings.TrimSpace(input.SuccessURL) == "" || strings.TrimSpace(input.CancelURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "success and cancel urls required")
	}
	plan, ok := s.catalog.Plan(input.Tier)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan tier")
	}

	kit, err := s.kits.FindByID(ctx, input.KitID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "kit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kit")
	}
	switch kit.Status {
	case enums.KitStatusGenerated, enums.KitStatusEditing, enums.KitStatusPublished:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "kit content not generated yet")
	}

	// The order id is minted before the Stripe call so the session metadata
	// can reference it.
	orderID := uuid.New()

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(input.SuccessURL),
		CancelURL:     stripe.String(input.CancelURL),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(plan.Currency)),
					UnitAmount: stripe.Int64(plan.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%s (%s plan)", kit.Title, plan.Tier)),
					},
				},
			},
		},
	}
	params.AddMetadata("kit_id", kit.ID.String())
	params.AddMetadata("order_id", orderID.String())

	session, err := s.stripe.Create(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	order := &models.Order{
		ID:                orderID,
		KitID:             kit.ID,
		CustomerEmail:     email,
		Status:            enums.OrderStatusAwaitingPayment,
		AmountCents:       plan.AmountCents,
		Currency:          plan.Currency,
		PlanTier:          plan.Tier,
		CheckoutSessionID: &session.ID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}
		err := s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			KitID:   &kit.ID,
			ActorID: &input.ActorID,
			Action:  enums.AuditOrderCreated,
			After: types.JSONMap{
				"status":       string(enums.OrderStatusAwaitingPayment),
				"plan_tier":    string(plan.Tier),
				"amount_cents": plan.AmountCents,
			},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data: payloads.OrderTransitionEvent{
				OrderID:       order.ID,
				KitID:         kit.ID,
				KitTitle:      kit.Title,
				CustomerEmail: email,
				Status:        enums.OrderStatusAwaitingPayment,
				AmountCents:   plan.AmountCents,
				Currency:      plan.Currency,
				PlanTier:      plan.Tier,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return &SessionResponse{
		OrderID:       order.ID,
		SessionID:     session.ID,
		RedirectURL:   session.URL,
		AmountCents:   plan.AmountCents,
		AmountDisplay: plan.DisplayPrice,
		Currency:      plan.Currency,
		PlanTier:      plan.Tier,
	}, nil
}

func (s *service) Plans() []Plan {
	out := make([]Plan, 0, len(s.catalog.plans))
	for _, tier := range []enums.PlanTier{enums.PlanTierStandard, enums.PlanTierPremium} {
		if plan, ok := s.catalog.Plan(tier); ok {
			out = append(out, plan)
		}
	}
	return out
}
