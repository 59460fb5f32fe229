package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox/payloads"
)

const notificationsConsumer = "notifications"

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer turns outbox-published order and kit events into transactional
// email. Delivery is at-least-once; the Redis idempotency manager keeps a
// redelivered event from mailing twice.
type Consumer struct {
	mailer       Mailer
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	adminEmail   string
	logg         *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(mailer Mailer, subscription *pubsub.Subscriber, manager idempotencyChecker, adminEmail string, logg *logger.Logger) (*Consumer, error) {
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		mailer:       mailer,
		subscription: subscription,
		idempotency:  manager,
		adminEmail:   adminEmail,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	if !c.handlesEvent(eventType) {
		c.logg.Info(logCtx, "skipping event with no notification")
		return processResult{}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{}
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{}
	}
	logCtx = c.logg.WithField(logCtx, "event_id", envelope.EventID)

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationsConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	if err := c.dispatch(logCtx, eventType, envelope.Data); err != nil {
		c.logg.Error(logCtx, "notification delivery failed", err)
		_ = c.idempotency.Delete(ctx, notificationsConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{}
}

func (c *Consumer) handlesEvent(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventOrderPaid, enums.EventOrderQAPending, enums.EventKitApproved, enums.EventOrderDelivered:
		return true
	default:
		return false
	}
}

func (c *Consumer) dispatch(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) error {
	switch eventType {
	case enums.EventOrderPaid:
		return c.withOrderEvent(ctx, data, c.sendPaymentConfirmation)
	case enums.EventOrderQAPending:
		return c.withOrderEvent(ctx, data, c.sendReviewNotices)
	case enums.EventOrderDelivered:
		return c.withOrderEvent(ctx, data, c.sendDownloadReceipt)
	case enums.EventKitApproved:
		var payload payloads.KitApprovedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "unreadable kit approval payload")
			return nil
		}
		return c.sendApprovalNotice(ctx, payload)
	default:
		return nil
	}
}

func (c *Consumer) withOrderEvent(ctx context.Context, data json.RawMessage, send func(context.Context, payloads.OrderTransitionEvent) error) error {
	var payload payloads.OrderTransitionEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "unreadable order event payload")
		return nil
	}
	if strings.TrimSpace(payload.CustomerEmail) == "" {
		c.logg.Warn(ctx, "order event has no customer email")
		return nil
	}
	return send(c.logg.WithField(ctx, "order_id", payload.OrderID.String()), payload)
}

func (c *Consumer) sendPaymentConfirmation(ctx context.Context, payload payloads.OrderTransitionEvent) error {
	err := c.mailer.Send(ctx, Email{
		To:      payload.CustomerEmail,
		Subject: "Your HireKit order is confirmed",
		Body: fmt.Sprintf(
			"Thanks for your order. We received your payment of %s for %s.\n\nYour hiring kit is being prepared and you will hear from us as soon as it is ready to download.",
			amountDisplay(payload.AmountCents, payload.Currency),
			kitLabel(payload.KitTitle),
		),
	})
	if err != nil {
		return err
	}
	c.logg.Info(ctx, "payment confirmation sent")
	return nil
}

func (c *Consumer) sendReviewNotices(ctx context.Context, payload payloads.OrderTransitionEvent) error {
	err := c.mailer.Send(ctx, Email{
		To:      payload.CustomerEmail,
		Subject: "Your hiring kit is in review",
		Body: fmt.Sprintf(
			"Your premium order for %s is being reviewed by our team before release. We will email you the moment it is approved.",
			kitLabel(payload.KitTitle),
		),
	})
	if err != nil {
		return err
	}
	c.logg.Info(ctx, "review notice sent")

	if strings.TrimSpace(c.adminEmail) == "" {
		return nil
	}
	err = c.mailer.Send(ctx, Email{
		To:      c.adminEmail,
		Subject: "Kit awaiting review",
		Body: fmt.Sprintf(
			"Order %s (%s, %s) is waiting for review.",
			payload.OrderID,
			kitLabel(payload.KitTitle),
			amountDisplay(payload.AmountCents, payload.Currency),
		),
	})
	if err != nil {
		return err
	}
	c.logg.Info(ctx, "admin review alert sent")
	return nil
}

func (c *Consumer) sendApprovalNotice(ctx context.Context, payload payloads.KitApprovedEvent) error {
	if strings.TrimSpace(payload.CustomerEmail) == "" {
		c.logg.Warn(ctx, "approval event has no customer email")
		return nil
	}
	err := c.mailer.Send(ctx, Email{
		To:      payload.CustomerEmail,
		Subject: "Your hiring kit is ready",
		Body: fmt.Sprintf(
			"Good news: %s passed review and is ready. Sign in to download your documents.",
			kitLabel(payload.Title),
		),
	})
	if err != nil {
		return err
	}
	c.logg.Info(ctx, "approval notice sent")
	return nil
}

func (c *Consumer) sendDownloadReceipt(ctx context.Context, payload payloads.OrderTransitionEvent) error {
	err := c.mailer.Send(ctx, Email{
		To:      payload.CustomerEmail,
		Subject: "Your hiring kit download receipt",
		Body: fmt.Sprintf(
			"Your download of %s is complete. This email is your receipt for %s.\n\nYou can re-export your documents from your dashboard at any time.",
			kitLabel(payload.KitTitle),
			amountDisplay(payload.AmountCents, payload.Currency),
		),
	})
	if err != nil {
		return err
	}
	c.logg.Info(ctx, "download receipt sent")
	return nil
}

func kitLabel(title string) string {
	if strings.TrimSpace(title) == "" {
		return "your hiring kit"
	}
	return fmt.Sprintf("%q", title)
}

func amountDisplay(cents int64, currency enums.Currency) string {
	amount := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
	if currency == "" {
		return amount
	}
	return amount + " " + strings.ToUpper(string(currency))
}
