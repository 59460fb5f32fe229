package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/api/middleware"
	"github.com/hirekitlabs/hirekit-backend/api/responses"
	"github.com/hirekitlabs/hirekit-backend/api/validators"
	internalkits "github.com/hirekitlabs/hirekit-backend/internal/kits"
	internalorders "github.com/hirekitlabs/hirekit-backend/internal/orders"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/pagination"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

// AdminKitList pages through kits for the review queue. Filters: status,
// requires_review, organization_id.
func AdminKitList(svc internalkits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kits service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := internalkits.ListQuery{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		if rawStatus := strings.TrimSpace(r.URL.Query().Get("status")); rawStatus != "" {
			status, err := enums.ParseKitStatus(rawStatus)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			query.Status = &status
		}
		if rawReview := strings.TrimSpace(r.URL.Query().Get("requires_review")); rawReview != "" {
			requiresReview, err := strconv.ParseBool(rawReview)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid requires_review filter"))
				return
			}
			query.RequiresReview = &requiresReview
		}
		if rawOrg := strings.TrimSpace(r.URL.Query().Get("organization_id")); rawOrg != "" {
			orgID, err := uuid.Parse(rawOrg)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid organization id filter"))
				return
			}
			query.OrganizationID = &orgID
		}

		result, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalkits.NewListResponse(*result))
	}
}

// AdminKitDetail returns the review view of one kit, including QA notes.
func AdminKitDetail(svc internalkits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kits service unavailable"))
			return
		}

		kitID, err := parseKitID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kit, err := svc.Get(r.Context(), kitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalkits.NewAdminResponse(*kit))
	}
}

type adminKitEditRequest struct {
	Title   string            `json:"title" validate:"required"`
	Body    string            `json:"body" validate:"required"`
	Bullets []string          `json:"bullets,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// AdminKitEditSection writes a reviewer-authored document into the kit's
// edited overlay for one section.
func AdminKitEditSection(svc internalkits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kits service unavailable"))
			return
		}

		actorID, err := actorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kitID, err := parseKitID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		section, err := parseSection(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminKitEditRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kit, err := svc.EditSection(r.Context(), internalkits.EditInput{
			KitID:   kitID,
			Section: section,
			Doc: types.SectionDoc{
				Title:   payload.Title,
				Body:    payload.Body,
				Bullets: payload.Bullets,
				Meta:    payload.Meta,
			},
			ActorID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalkits.NewAdminResponse(*kit))
	}
}

// AdminKitApprove publishes a reviewed kit and readies its order, then
// returns the refreshed review view.
func AdminKitApprove(ordersSvc internalorders.Service, kitsSvc internalkits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ordersSvc == nil || kitsSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "approval services unavailable"))
			return
		}

		actorID, err := actorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kitID, err := parseKitID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = ordersSvc.Approve(r.Context(), internalorders.ApproveInput{
			KitID:   kitID,
			ActorID: actorID,
			Role:    middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kit, err := kitsSvc.Get(r.Context(), kitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalkits.NewAdminResponse(*kit))
	}
}
