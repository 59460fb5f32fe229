package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/internal/audit"
	"github.com/hirekitlabs/hirekit-backend/internal/kits"
	"github.com/hirekitlabs/hirekit-backend/internal/orders"
	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{`
CREATE TABLE IF NOT EXISTS kits (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL,
  created_by TEXT NOT NULL,
  title TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  intake TEXT,
  generated_content TEXT,
  edited_content TEXT,
  regen_counts TEXT,
  requires_review INTEGER NOT NULL DEFAULT 0,
  qa_notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  kit_id TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  plan_tier TEXT NOT NULL DEFAULT 'standard',
  checkout_session_id TEXT,
  paid_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS audit_logs (
  id TEXT PRIMARY KEY,
  order_id TEXT,
  kit_id TEXT,
  actor_id TEXT,
  action TEXT NOT NULL,
  before TEXT,
  after TEXT,
  created_at DATETIME
);`}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM audit_logs")
		db.Exec("DELETE FROM orders")
		db.Exec("DELETE FROM kits")
	})
	return db
}

type stubSessionClient struct {
	session *stripe.CheckoutSession
	err     error
	params  *stripe.CheckoutSessionParams
	calls   int
}

func (s *stubSessionClient) Create(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.calls++
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type capturingEmitter struct {
	events []outbox.DomainEvent
}

func (e *capturingEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	e.events = append(e.events, event)
	return nil
}

type checkoutFixture struct {
	db      *gorm.DB
	svc     Service
	kits    kits.Repository
	orders  orders.Repository
	stripe  *stubSessionClient
	emitter *capturingEmitter
}

func testPlansConfig() config.PlansConfig {
	return config.PlansConfig{
		StandardPriceCents:   4900,
		PremiumPriceCents:    12900,
		ReviewThresholdCents: 10000,
		Currency:             "usd",
		FreeRegenLimit:       3,
	}
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	db := setupCheckoutTestDB(t)
	kitRepo := kits.NewRepository(db)
	orderRepo := orders.NewRepository(db)
	stripeClient := &stubSessionClient{
		session: &stripe.CheckoutSession{
			ID:  "cs_test_" + uuid.NewString(),
			URL: "https://checkout.stripe.com/c/pay/cs_test",
		},
	}
	emitter := &capturingEmitter{}
	svc, err := NewService(kitRepo, orderRepo, stripeClient, NewCatalog(testPlansConfig()), gormTxRunner{db: db}, emitter, audit.NewRecorder(db))
	require.NoError(t, err)
	return &checkoutFixture{db: db, svc: svc, kits: kitRepo, orders: orderRepo, stripe: stripeClient, emitter: emitter}
}

func (f *checkoutFixture) seedKit(t *testing.T, status enums.KitStatus) *models.Kit {
	t.Helper()

	kit := &models.Kit{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		CreatedBy:      uuid.New(),
		Title:          "Staff Engineer",
		Status:         status,
	}
	require.NoError(t, f.kits.Create(context.Background(), kit))
	return kit
}

func sessionInput(kitID uuid.UUID, tier enums.PlanTier) CreateSessionInput {
	return CreateSessionInput{
		KitID:         kitID,
		Tier:          tier,
		CustomerEmail: "Buyer@Example.com",
		SuccessURL:    "https://app.hirekit.dev/checkout/success",
		CancelURL:     "https://app.hirekit.dev/checkout/cancel",
		ActorID:       uuid.New(),
	}
}

func assertCheckoutErrorCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestCreateSessionStandardPlan(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	kit := f.seedKit(t, enums.KitStatusGenerated)
	resp, err := f.svc.CreateSession(ctx, sessionInput(kit.ID, enums.PlanTierStandard))
	require.NoError(t, err)

	assert.Equal(t, f.stripe.session.ID, resp.SessionID)
	assert.Equal(t, f.stripe.session.URL, resp.RedirectURL)
	assert.Equal(t, int64(4900), resp.AmountCents)
	assert.Equal(t, "49.00", resp.AmountDisplay)
	assert.Equal(t, enums.PlanTierStandard, resp.PlanTier)

	order, err := f.orders.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusAwaitingPayment, order.Status)
	assert.Equal(t, kit.ID, order.KitID)
	assert.Equal(t, "buyer@example.com", order.CustomerEmail)
	require.NotNil(t, order.CheckoutSessionID)
	assert.Equal(t, f.stripe.session.ID, *order.CheckoutSessionID)

	// Session metadata lets the webhook tie the settlement back to the order.
	require.NotNil(t, f.stripe.params)
	assert.Equal(t, kit.ID.String(), f.stripe.params.Metadata["kit_id"])
	assert.Equal(t, resp.OrderID.String(), f.stripe.params.Metadata["order_id"])

	require.Len(t, f.emitter.events, 1)
	assert.Equal(t, enums.EventOrderCreated, f.emitter.events[0].EventType)

	var count int64
	require.NoError(t, f.db.Table("audit_logs").Where("order_id = ? AND action = ?", resp.OrderID, enums.AuditOrderCreated).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateSessionPremiumPlan(t *testing.T) {
	f := newCheckoutFixture(t)
	kit := f.seedKit(t, enums.KitStatusPublished)

	resp, err := f.svc.CreateSession(context.Background(), sessionInput(kit.ID, enums.PlanTierPremium))
	require.NoError(t, err)
	assert.Equal(t, int64(12900), resp.AmountCents)
	assert.Equal(t, "129.00", resp.AmountDisplay)
	assert.Equal(t, enums.PlanTierPremium, resp.PlanTier)
}

func TestCreateSessionRequiresGeneratedContent(t *testing.T) {
	f := newCheckoutFixture(t)
	kit := f.seedKit(t, enums.KitStatusDraft)

	_, err := f.svc.CreateSession(context.Background(), sessionInput(kit.ID, enums.PlanTierStandard))
	assertCheckoutErrorCode(t, err, pkgerrors.CodeStateConflict)
	assert.Zero(t, f.stripe.calls)
}

func TestCreateSessionUnknownKit(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.svc.CreateSession(context.Background(), sessionInput(uuid.New(), enums.PlanTierStandard))
	assertCheckoutErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateSessionUnknownTier(t *testing.T) {
	f := newCheckoutFixture(t)
	kit := f.seedKit(t, enums.KitStatusGenerated)

	_, err := f.svc.CreateSession(context.Background(), sessionInput(kit.ID, enums.PlanTier("enterprise")))
	assertCheckoutErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateSessionStripeFailure(t *testing.T) {
	f := newCheckoutFixture(t)
	kit := f.seedKit(t, enums.KitStatusGenerated)
	f.stripe.err = errors.New("stripe unavailable")

	_, err := f.svc.CreateSession(context.Background(), sessionInput(kit.ID, enums.PlanTierStandard))
	assertCheckoutErrorCode(t, err, pkgerrors.CodeDependency)

	// No order row may exist without a session behind it.
	var count int64
	require.NoError(t, f.db.Table("orders").Where("kit_id = ?", kit.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlansCatalog(t *testing.T) {
	f := newCheckoutFixture(t)
	plans := f.svc.Plans()
	require.Len(t, plans, 2)
	assert.Equal(t, enums.PlanTierStandard, plans[0].Tier)
	assert.Equal(t, "49.00", plans[0].DisplayPrice)
	assert.Equal(t, enums.PlanTierPremium, plans[1].Tier)
	assert.Equal(t, "129.00", plans[1].DisplayPrice)
}
