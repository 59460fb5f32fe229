package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/internal/audit"
	"github.com/hirekitlabs/hirekit-backend/internal/kits"
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

// Service drives order lifecycle transitions. Every transition runs inside a
// transaction that also appends the audit entry and the outbox event, so a
// status change, its trail, and its notification commit or roll back together.
type Service interface {
	// PaymentSucceeded applies the payment-succeeded transition for the order
	// holding the checkout session. Orders already in a settled status are a
	// no-op so webhook redelivery stays harmless.
	PaymentSucceeded(ctx context.Context, sessionID string) error
	// PaymentFailed reverts the order holding the checkout session to draft.
	PaymentFailed(ctx context.Context, sessionID string) error
	// MarkPaid is the admin override for out-of-band payments. Unlike the
	// webhook path it refuses any order not awaiting payment.
	MarkPaid(ctx context.Context, input MarkPaidInput) error
	// Approve publishes a reviewed kit and readies its order in one
	// transaction.
	Approve(ctx context.Context, input ApproveInput) error
	// MarkDeliveredTx transitions a paid or ready order to delivered inside
	// the caller's transaction. Delivered orders stay delivered.
	MarkDeliveredTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, actorID *uuid.UUID) error
	AddNote(ctx context.Context, input NoteInput) error
	ResendEmail(ctx context.Context, input ResendEmailInput) error
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
}

// MarkPaidInput identifies the order and the admin applying the override.
type MarkPaidInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	Role    string
}

// ApproveInput identifies the kit under review and the approving admin.
type ApproveInput struct {
	KitID   uuid.UUID
	ActorID uuid.UUID
	Role    string
}

// NoteInput carries an admin QA note for an order's kit.
type NoteInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	Note    string
}

// ResendEmailInput identifies the order whose lifecycle email should go out
// again.
type ResendEmailInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	Role    string
}

type service struct {
	repo      Repository
	kits      kits.Repository
	tx        txRunner
	outbox    outboxEmitter
	audit     auditAppender
	threshold int64
}

// NewService builds the order service with the required collaborators.
// reviewThresholdCents decides the paid/qa_pending branch on settlement.
func NewService(repo Repository, kitRepo kits.Repository, tx txRunner, emitter outboxEmitter, recorder auditAppender, reviewThresholdCents int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if kitRepo == nil {
		return nil, fmt.Errorf("kits repository required")
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
	if reviewThresholdCents <= 0 {
		return nil, fmt.Errorf("review threshold must be positive")
	}
	return &service{
		repo:      repo,
		kits:      kitRepo,
		tx:        tx,
		outbox:    emitter,
		audit:     recorder,
		threshold: reviewThresholdCents,
	}, nil
}

func (s *service) PaymentSucceeded(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByCheckoutSession(ctx, sessionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no order for checkout session")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by session")
		}
		if order.Status.IsPaidTier() {
			return nil
		}

		target := s.settledStatus(order.AmountCents)
		now := time.Now().UTC()
		changed, err := repo.UpdateGuarded(ctx, order.ID, enums.OrderStatusAwaitingPayment, map[string]any{
			"status":  target,
			"paid_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply payment transition")
		}
		if !changed {
			return s.settledElsewhere(ctx, repo, order.ID)
		}

		kit, err := s.kits.WithTx(tx).FindByID(ctx, order.KitID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kit for paid order")
		}

		action := enums.AuditOrderPaid
		eventType := enums.EventOrderPaid
		after := types.JSONMap{"status": string(target)}
		if target == enums.OrderStatusQAPending {
			action = enums.AuditOrderQAPending
			eventType = enums.EventOrderQAPending
			after["kit_status"] = string(enums.KitStatusEditing)
			after["requires_review"] = true
			err = s.kits.WithTx(tx).Update(ctx, kit.ID, map[string]any{
				"status":          enums.KitStatusEditing,
				"requires_review": true,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flag kit for review")
			}
		}

		err = s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			KitID:   &order.KitID,
			Action:  action,
			Before:  types.JSONMap{"status": string(order.Status)},
			After:   after,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data:          s.transitionPayload(order, kit, target),
		})
	})
}

func (s *service) PaymentFailed(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByCheckoutSession(ctx, sessionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no order for checkout session")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by session")
		}
		if order.Status == enums.OrderStatusDraft {
			return nil
		}

		changed, err := repo.UpdateGuarded(ctx, order.ID, enums.OrderStatusAwaitingPayment, map[string]any{
			"status": enums.OrderStatusDraft,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revert order to draft")
		}
		if !changed {
			refreshed, err := repo.FindByID(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			if refreshed.Status == enums.OrderStatusDraft {
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
		}

		err = s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			KitID:   &order.KitID,
			Action:  enums.AuditOrderPaymentFailed,
			Before:  types.JSONMap{"status": string(order.Status)},
			After:   types.JSONMap{"status": string(enums.OrderStatusDraft)},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaymentFailed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data:          s.transitionPayload(order, nil, enums.OrderStatusDraft),
		})
	})
}

func (s *service) MarkPaid(ctx context.Context, input MarkPaidInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusAwaitingPayment {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
		}

		target := s.settledStatus(order.AmountCents)
		now := time.Now().UTC()
		changed, err := repo.UpdateGuarded(ctx, order.ID, enums.OrderStatusAwaitingPayment, map[string]any{
			"status":  target,
			"paid_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply mark-paid transition")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
		}

		kit, err := s.kits.WithTx(tx).FindByID(ctx, order.KitID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kit for paid order")
		}

		eventType := enums.EventOrderPaid
		after := types.JSONMap{"status": string(target)}
		if target == enums.OrderStatusQAPending {
			eventType = enums.EventOrderQAPending
			after["kit_status"] = string(enums.KitStatusEditing)
			after["requires_review"] = true
			err = s.kits.WithTx(tx).Update(ctx, kit.ID, map[string]any{
				"status":          enums.KitStatusEditing,
				"requires_review": true,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flag kit for review")
			}
		}

		err = s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			KitID:   &order.KitID,
			ActorID: &input.ActorID,
			Action:  enums.AuditOrderMarkedPaid,
			Before:  types.JSONMap{"status": string(order.Status)},
			After:   after,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: input.Role},
			Data:          s.transitionPayload(order, kit, target),
		})
	})
}

func (s *service) Approve(ctx context.Context, input ApproveInput) error {
	if input.KitID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "kit id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		kitRepo := s.kits.WithTx(tx)
		kit, err := kitRepo.FindByID(ctx, input.KitID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "kit not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kit")
		}
		if !kit.RequiresReview {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "kit is not awaiting review")
		}

		repo := s.repo.WithTx(tx)
		order, err := repo.FindNewestByKit(ctx, kit.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no order for kit")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order for kit")
		}
		if order.Status != enums.OrderStatusQAPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting review")
		}

		changed, err := kitRepo.UpdateGuarded(ctx, kit.ID, enums.KitStatusEditing, map[string]any{
			"status":          enums.KitStatusPublished,
			"requires_review": false,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish kit")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "kit review already resolved")
		}

		// A lost race here rolls the kit write back with the transaction, so
		// the review flag never clears without the order becoming ready.
		changed, err = repo.UpdateGuarded(ctx, order.ID, enums.OrderStatusQAPending, map[string]any{
			"status": enums.OrderStatusReady,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ready order")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order review already resolved")
		}

		err = s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			KitID:   &kit.ID,
			ActorID: &input.ActorID,
			Action:  enums.AuditKitApproved,
			Before:  types.JSONMap{"kit_status": string(enums.KitStatusEditing), "requires_review": true},
			After:   types.JSONMap{"kit_status": string(enums.KitStatusPublished), "requires_review": false},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append kit audit entry")
		}
		err = s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			KitID:   &kit.ID,
			ActorID: &input.ActorID,
			Action:  enums.AuditOrderReady,
			Before:  types.JSONMap{"status": string(enums.OrderStatusQAPending)},
			After:   types.JSONMap{"status": string(enums.OrderStatusReady)},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order audit entry")
		}

		actor := &outbox.ActorRef{UserID: input.ActorID, Role: input.Role}
		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventKitApproved,
			AggregateType: enums.AggregateKit,
			AggregateID:   kit.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.KitApprovedEvent{
				KitID:         kit.ID,
				OrderID:       order.ID,
				Title:         kit.Title,
				CustomerEmail: order.CustomerEmail,
			},
		})
		if err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderReady,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actor,
			Data:          s.transitionPayload(order, kit, enums.OrderStatusReady),
		})
	})
}

func (s *service) MarkDeliveredTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, actorID *uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	repo := s.repo.WithTx(tx)
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status == enums.OrderStatusDelivered {
		return nil
	}
	if order.Status != enums.OrderStatusPaid && order.Status != enums.OrderStatusReady {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not deliverable")
	}

	now := time.Now().UTC()
	changed, err := repo.UpdateGuarded(ctx, order.ID, order.Status, map[string]any{
		"status":       enums.OrderStatusDelivered,
		"delivered_at": now,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deliver order")
	}
	if !changed {
		refreshed, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		if refreshed.Status == enums.OrderStatusDelivered {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not deliverable")
	}

	err = s.audit.AppendTx(ctx, tx, audit.Entry{
		OrderID: &order.ID,
		KitID:   &order.KitID,
		ActorID: actorID,
		Action:  enums.AuditOrderDelivered,
		Before:  types.JSONMap{"status": string(order.Status)},
		After:   types.JSONMap{"status": string(enums.OrderStatusDelivered)},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
	}

	var actor *outbox.ActorRef
	if actorID != nil {
		actor = &outbox.ActorRef{UserID: *actorID}
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderDelivered,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         actor,
		Data:          s.transitionPayload(order, nil, enums.OrderStatusDelivered),
	})
}

func (s *service) AddNote(ctx context.Context, input NoteInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	note := strings.TrimSpace(input.Note)
	if note == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "note required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		kitRepo := s.kits.WithTx(tx)
		kit, err := kitRepo.FindByID(ctx, order.KitID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kit for order")
		}

		combined := note
		if kit.QANotes != nil && strings.TrimSpace(*kit.QANotes) != "" {
			combined = *kit.QANotes + "\n" + note
		}
		if err := kitRepo.Update(ctx, kit.ID, map[string]any{"qa_notes": combined}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save qa note")
		}

		return s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			KitID:   &kit.ID,
			ActorID: &input.ActorID,
			Action:  enums.AuditOrderNoteAdded,
			After:   types.JSONMap{"note": note},
		})
	})
}

func (s *service) ResendEmail(ctx context.Context, input ResendEmailInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		kit, err := s.kits.WithTx(tx).FindByID(ctx, order.KitID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kit for order")
		}

		actor := &outbox.ActorRef{UserID: input.ActorID, Role: input.Role}
		var event outbox.DomainEvent
		switch order.Status {
		case enums.OrderStatusPaid:
			event = outbox.DomainEvent{
				EventType:     enums.EventOrderPaid,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data:          s.transitionPayload(order, kit, order.Status),
			}
		case enums.OrderStatusQAPending:
			event = outbox.DomainEvent{
				EventType:     enums.EventOrderQAPending,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data:          s.transitionPayload(order, kit, order.Status),
			}
		case enums.OrderStatusReady:
			event = outbox.DomainEvent{
				EventType:     enums.EventKitApproved,
				AggregateType: enums.AggregateKit,
				AggregateID:   kit.ID,
				Data: payloads.KitApprovedEvent{
					KitID:         kit.ID,
					OrderID:       order.ID,
					Title:         kit.Title,
					CustomerEmail: order.CustomerEmail,
				},
			}
		case enums.OrderStatusDelivered:
			event = outbox.DomainEvent{
				EventType:     enums.EventOrderDelivered,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data:          s.transitionPayload(order, kit, order.Status),
			}
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no email for current order status")
		}
		event.Version = 1
		event.Actor = actor

		err = s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			KitID:   &kit.ID,
			ActorID: &input.ActorID,
			Action:  enums.AuditOrderEmailResent,
			After:   types.JSONMap{"event_type": string(event.EventType)},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
		}

		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	result, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return result, nil
}

// settledStatus picks the post-payment status from the order amount.
func (s *service) settledStatus(amountCents int64) enums.OrderStatus {
	if amountCents >= s.threshold {
		return enums.OrderStatusQAPending
	}
	return enums.OrderStatusPaid
}

// settledElsewhere resolves a lost guarded update on the payment path: a
// concurrent settlement is a no-op, anything else is a state conflict.
func (s *service) settledElsewhere(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	refreshed, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	if refreshed.Status.IsPaidTier() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
}

func (s *service) transitionPayload(order *models.Order, kit *models.Kit, status enums.OrderStatus) payloads.OrderTransitionEvent {
	payload := payloads.OrderTransitionEvent{
		OrderID:        order.ID,
		KitID:          order.KitID,
		CustomerEmail:  order.CustomerEmail,
		Status:         status,
		PreviousStatus: order.Status,
		AmountCents:    order.AmountCents,
		Currency:       order.Currency,
		PlanTier:       order.PlanTier,
	}
	if kit != nil {
		payload.KitTitle = kit.Title
	}
	return payload
}
