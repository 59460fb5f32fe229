package stripewebhook

import (
	"context"

	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/pkg/db"
	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

// Gate admits each provider event id at most once. The webhook_events
// primary key makes the first insert win; every later delivery of the same
// id surfaces as a unique violation and is resolved against the stored
// status.
type Gate struct {
	db *gorm.DB
}

func NewGate(conn *gorm.DB) (*Gate, error) {
	if conn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db connection required")
	}
	return &Gate{db: conn}, nil
}

// Begin claims eventID for processing. It reports (true, nil) when the
// caller owns the event, either on first sight or when reclaiming a failed
// delivery. A completed duplicate reports (false, nil) so the delivery can
// be acknowledged without reprocessing. A duplicate that is still
// processing returns an idempotency conflict.
func (g *Gate) Begin(ctx context.Context, eventID, eventType string, metadata types.JSONMap) (bool, error) {
	if eventID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}

	record := &models.WebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Status:    enums.WebhookEventStatusProcessing,
		Metadata:  metadata,
	}
	err := g.db.WithContext(ctx).Create(record).Error
	if err == nil {
		return true, nil
	}
	if !db.IsUniqueViolation(err, "") {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert webhook event")
	}

	var existing models.WebhookEvent
	if err := g.db.WithContext(ctx).First(&existing, "event_id = ?", eventID).Error; err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load webhook event")
	}

	switch existing.Status {
	case enums.WebhookEventStatusCompleted:
		return false, nil
	case enums.WebhookEventStatusFailed:
		// Only one retry may reclaim the row; losers see it processing.
		result := g.db.WithContext(ctx).
			Model(&models.WebhookEvent{}).
			Where("event_id = ? AND status = ?", eventID, enums.WebhookEventStatusFailed).
			UpdateColumn("status", enums.WebhookEventStatusProcessing)
		if result.Error != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "reclaim webhook event")
		}
		if result.RowsAffected == 0 {
			return false, pkgerrors.New(pkgerrors.CodeIdempotency, "event is still processing")
		}
		return true, nil
	default:
		return false, pkgerrors.New(pkgerrors.CodeIdempotency, "event is still processing")
	}
}

// Complete marks the event as processed. Completed ids are never
// reprocessed.
func (g *Gate) Complete(ctx context.Context, eventID string) error {
	return g.setStatus(ctx, eventID, enums.WebhookEventStatusCompleted)
}

// Fail releases the claim so the provider's redelivery can retry the event.
func (g *Gate) Fail(ctx context.Context, eventID string) error {
	return g.setStatus(ctx, eventID, enums.WebhookEventStatusFailed)
}

func (g *Gate) setStatus(ctx context.Context, eventID string, status enums.WebhookEventStatus) error {
	if eventID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	result := g.db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Where("event_id = ?", eventID).
		UpdateColumn("status", status)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "update webhook event")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "webhook event not found")
	}
	return nil
}
