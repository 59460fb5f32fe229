package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/api/responses"
	"github.com/hirekitlabs/hirekit-backend/api/validators"
	checkoutsvc "github.com/hirekitlabs/hirekit-backend/internal/checkout"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
)

type checkoutCreateRequest struct {
	KitID         uuid.UUID `json:"kit_id" validate:"required"`
	PlanTier      string    `json:"plan_tier" validate:"required"`
	CustomerEmail string    `json:"customer_email" validate:"required,email"`
	SuccessURL    string    `json:"success_url" validate:"required,url"`
	CancelURL     string    `json:"cancel_url" validate:"required,url"`
}

// CheckoutCreate opens a Stripe Checkout Session for a kit purchase and
// returns the redirect URL. The order is created awaiting_payment; the
// payment webhook settles it.
func CheckoutCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		actorID, err := actorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := enums.ParsePlanTier(strings.TrimSpace(payload.PlanTier))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan tier"))
			return
		}

		session, err := svc.CreateSession(r.Context(), checkoutsvc.CreateSessionInput{
			KitID:         payload.KitID,
			Tier:          tier,
			CustomerEmail: payload.CustomerEmail,
			SuccessURL:    payload.SuccessURL,
			CancelURL:     payload.CancelURL,
			ActorID:       actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// CheckoutPlans lists the purchasable plan tiers with display prices.
func CheckoutPlans(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"plans": svc.Plans()})
	}
}
