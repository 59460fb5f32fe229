package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

// Entry captures one state change for the append-only audit trail.
type Entry struct {
	OrderID *uuid.UUID
	KitID   *uuid.UUID
	ActorID *uuid.UUID
	Action  enums.AuditAction
	Before  types.JSONMap
	After   types.JSONMap
}

// Recorder writes audit rows. Appends always happen inside the caller's
// transaction so the trail commits or rolls back with the change it records.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder builds a Recorder bound to the provided DB for reads.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// AppendTx inserts one audit row inside tx.
func (r *Recorder) AppendTx(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.Action == "" {
		return errors.New("audit action required")
	}
	row := models.AuditLog{
		OrderID: entry.OrderID,
		KitID:   entry.KitID,
		ActorID: entry.ActorID,
		Action:  entry.Action,
		Before:  entry.Before,
		After:   entry.After,
	}
	return tx.WithContext(ctx).Create(&row).Error
}

// ListByOrder returns the newest audit rows for an order.
func (r *Recorder) ListByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByKit returns the newest audit rows for a kit.
func (r *Recorder) ListByKit(ctx context.Context, kitID uuid.UUID, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("kit_id = ?", kitID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
