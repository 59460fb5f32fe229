package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	checkoutsvc "github.com/hirekitlabs/hirekit-backend/internal/checkout"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

type stubCheckoutService struct {
	createFn func(ctx context.Context, input checkoutsvc.CreateSessionInput) (*checkoutsvc.SessionResponse, error)
	plans    []checkoutsvc.Plan
}

func (s stubCheckoutService) CreateSession(ctx context.Context, input checkoutsvc.CreateSessionInput) (*checkoutsvc.SessionResponse, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &checkoutsvc.SessionResponse{}, nil
}

func (s stubCheckoutService) Plans() []checkoutsvc.Plan {
	return s.plans
}

func checkoutBody(kitID uuid.UUID, tier string) string {
	return `{"kit_id":"` + kitID.String() + `","plan_tier":"` + tier + `",` +
		`"customer_email":"buyer@example.com",` +
		`"success_url":"https://app.hirekit.io/checkout/success",` +
		`"cancel_url":"https://app.hirekit.io/checkout/cancel"}`
}

func TestCheckoutCreate(t *testing.T) {
	actorID := uuid.New()
	kitID := uuid.New()
	orderID := uuid.New()

	var captured checkoutsvc.CreateSessionInput
	svc := stubCheckoutService{
		createFn: func(ctx context.Context, input checkoutsvc.CreateSessionInput) (*checkoutsvc.SessionResponse, error) {
			captured = input
			return &checkoutsvc.SessionResponse{
				OrderID:       orderID,
				SessionID:     "cs_test_123",
				RedirectURL:   "https://checkout.stripe.com/pay/cs_test_123",
				AmountCents:   4900,
				AmountDisplay: "49.00",
				Currency:      enums.CurrencyUSD,
				PlanTier:      enums.PlanTierStandard,
			}, nil
		},
	}

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody(kitID, "standard"))), actorID)
	resp := httptest.NewRecorder()
	CheckoutCreate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	if captured.KitID != kitID || captured.Tier != enums.PlanTierStandard || captured.ActorID != actorID {
		t.Fatalf("unexpected input %+v", captured)
	}
	if captured.CustomerEmail != "buyer@example.com" {
		t.Fatalf("unexpected email %q", captured.CustomerEmail)
	}

	var envelope struct {
		Data checkoutsvc.SessionResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != orderID || envelope.Data.RedirectURL == "" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestCheckoutCreateInvalidTier(t *testing.T) {
	called := false
	svc := stubCheckoutService{
		createFn: func(ctx context.Context, input checkoutsvc.CreateSessionInput) (*checkoutsvc.SessionResponse, error) {
			called = true
			return nil, nil
		},
	}

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody(uuid.New(), "enterprise"))), uuid.New())
	resp := httptest.NewRecorder()
	CheckoutCreate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatal("service should not be invoked for unknown tier")
	}
}

func TestCheckoutCreateRejectsBadEmail(t *testing.T) {
	body := `{"kit_id":"` + uuid.NewString() + `","plan_tier":"standard",` +
		`"customer_email":"not-an-email",` +
		`"success_url":"https://app.hirekit.io/s","cancel_url":"https://app.hirekit.io/c"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	CheckoutCreate(stubCheckoutService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestCheckoutPlans(t *testing.T) {
	svc := stubCheckoutService{
		plans: []checkoutsvc.Plan{
			{Tier: enums.PlanTierStandard, AmountCents: 4900, Currency: enums.CurrencyUSD, DisplayPrice: "49.00"},
			{Tier: enums.PlanTierPremium, AmountCents: 12900, Currency: enums.CurrencyUSD, DisplayPrice: "129.00"},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	resp := httptest.NewRecorder()
	CheckoutPlans(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Plans []checkoutsvc.Plan `json:"plans"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Plans) != 2 || envelope.Data.Plans[1].AmountCents != 12900 {
		t.Fatalf("unexpected plans %+v", envelope.Data.Plans)
	}
}
