package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/api/responses"
	"github.com/hirekitlabs/hirekit-backend/api/validators"
	"github.com/hirekitlabs/hirekit-backend/internal/intake"
	internalkits "github.com/hirekitlabs/hirekit-backend/internal/kits"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
)

type kitCreateRequest struct {
	intake.Input
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
}

// KitCreate runs the full intake-to-kit generation for the caller's
// organization. The response carries the generated content.
func KitCreate(svc internalkits.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload kitCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kit, err := svc.Create(r.Context(), internalkits.CreateInput{
			Intake:         payload.Input,
			OrganizationID: payload.OrganizationID,
			ActorID:        actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, internalkits.NewResponse(*kit))
	}
}

// KitDetail returns one kit with its effective content.
func KitDetail(svc internalkits.Service, logg *logger.Logger) http.HandlerFunc {
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

		responses.WriteSuccess(w, internalkits.NewResponse(*kit))
	}
}

// KitRegenerateSection replaces one section of the kit, consuming one free
// regeneration when the kit has no settled order.
func KitRegenerateSection(svc internalkits.Service, logg *logger.Logger) http.HandlerFunc {
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

		kit, err := svc.RegenerateSection(r.Context(), internalkits.RegenerateInput{
			KitID:   kitID,
			Section: section,
			ActorID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalkits.NewResponse(*kit))
	}
}

func parseKitID(r *http.Request) (uuid.UUID, error) {
	rawKitID := strings.TrimSpace(chi.URLParam(r, "kitId"))
	if rawKitID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "kit id is required")
	}
	kitID, err := uuid.Parse(rawKitID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kit id")
	}
	return kitID, nil
}

func parseSection(r *http.Request) (enums.SectionKey, error) {
	rawSection := strings.TrimSpace(chi.URLParam(r, "section"))
	if rawSection == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "section is required")
	}
	section, err := enums.ParseSectionKey(rawSection)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid section")
	}
	return section, nil
}
