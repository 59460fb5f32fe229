package stripewebhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

func setupGateTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS webhook_events (
  event_id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'processing',
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM webhook_events")
	})
	return db
}

func gateStatus(t *testing.T, db *gorm.DB, eventID string) enums.WebhookEventStatus {
	t.Helper()

	var record models.WebhookEvent
	require.NoError(t, db.First(&record, "event_id = ?", eventID).Error)
	return record.Status
}

func TestGateFirstSightClaims(t *testing.T) {
	db := setupGateTestDB(t)
	gate, err := NewGate(db)
	require.NoError(t, err)
	ctx := context.Background()

	proceed, err := gate.Begin(ctx, "evt_first", "checkout.session.completed", types.JSONMap{"session_id": "cs_1"})
	require.NoError(t, err)
	assert.True(t, proceed)
	assert.Equal(t, enums.WebhookEventStatusProcessing, gateStatus(t, db, "evt_first"))
}

func TestGateCompletedDuplicateShortCircuits(t *testing.T) {
	db := setupGateTestDB(t)
	gate, err := NewGate(db)
	require.NoError(t, err)
	ctx := context.Background()

	proceed, err := gate.Begin(ctx, "evt_done", "checkout.session.completed", nil)
	require.NoError(t, err)
	require.True(t, proceed)
	require.NoError(t, gate.Complete(ctx, "evt_done"))

	proceed, err = gate.Begin(ctx, "evt_done", "checkout.session.completed", nil)
	require.NoError(t, err)
	assert.False(t, proceed)
	assert.Equal(t, enums.WebhookEventStatusCompleted, gateStatus(t, db, "evt_done"))
}

func TestGateProcessingDuplicateConflicts(t *testing.T) {
	db := setupGateTestDB(t)
	gate, err := NewGate(db)
	require.NoError(t, err)
	ctx := context.Background()

	proceed, err := gate.Begin(ctx, "evt_inflight", "checkout.session.completed", nil)
	require.NoError(t, err)
	require.True(t, proceed)

	proceed, err = gate.Begin(ctx, "evt_inflight", "checkout.session.completed", nil)
	assert.False(t, proceed)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeIdempotency, typed.Code())
}

func TestGateFailedDeliveryCanRetry(t *testing.T) {
	db := setupGateTestDB(t)
	gate, err := NewGate(db)
	require.NoError(t, err)
	ctx := context.Background()

	proceed, err := gate.Begin(ctx, "evt_retry", "checkout.session.completed", nil)
	require.NoError(t, err)
	require.True(t, proceed)
	require.NoError(t, gate.Fail(ctx, "evt_retry"))

	proceed, err = gate.Begin(ctx, "evt_retry", "checkout.session.completed", nil)
	require.NoError(t, err)
	assert.True(t, proceed)
	assert.Equal(t, enums.WebhookEventStatusProcessing, gateStatus(t, db, "evt_retry"))
}

func TestGateCompleteUnknownEvent(t *testing.T) {
	db := setupGateTestDB(t)
	gate, err := NewGate(db)
	require.NoError(t, err)

	err = gate.Complete(context.Background(), "evt_missing")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGateRequiresEventID(t *testing.T) {
	db := setupGateTestDB(t)
	gate, err := NewGate(db)
	require.NoError(t, err)

	_, err = gate.Begin(context.Background(), "", "checkout.session.completed", nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
