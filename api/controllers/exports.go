package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/api/responses"
	"github.com/hirekitlabs/hirekit-backend/api/validators"
	"github.com/hirekitlabs/hirekit-backend/internal/exports"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
)

type exportRequest struct {
	Kind string `json:"kind" validate:"required"`
}

type exportReadyResponse struct {
	Status   string    `json:"status"`
	ExportID uuid.UUID `json:"export_id"`
	Location string    `json:"location"`
}

type exportQueuedResponse struct {
	Status    string    `json:"status"`
	JobID     uuid.UUID `json:"job_id"`
	StatusURL string    `json:"status_url"`
}

type exportJobStatusResponse struct {
	JobID    uuid.UUID             `json:"job_id"`
	Status   enums.ExportJobStatus `json:"status"`
	Progress int                   `json:"progress"`
	Location string                `json:"location,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// ExportRequest asks for a rendered export of the kit. A fresh cached
// artifact or a fast render answers inline with the download location;
// anything slower is queued and answered with a job id to poll.
func ExportRequest(svc exports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
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

		var payload exportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseExportKind(strings.TrimSpace(payload.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid export kind"))
			return
		}

		result, err := svc.RequestExport(r.Context(), exports.RequestInput{
			KitID:   kitID,
			Kind:    kind,
			ActorID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Ready {
			responses.WriteSuccess(w, exportReadyResponse{
				Status:   "ready",
				ExportID: result.ExportID,
				Location: result.Location,
			})
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, exportQueuedResponse{
			Status:    "queued",
			JobID:     result.JobID,
			StatusURL: fmt.Sprintf("/api/v1/exports/jobs/%s", result.JobID),
		})
	}
}

// ExportJobStatus reports async export progress. Completed jobs carry the
// download location, failed jobs the error message, never partial content.
func ExportJobStatus(svc exports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		rawJobID := strings.TrimSpace(chi.URLParam(r, "jobId"))
		if rawJobID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "job id is required"))
			return
		}
		jobID, err := uuid.Parse(rawJobID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid job id"))
			return
		}

		status, err := svc.JobStatus(r.Context(), jobID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, exportJobStatusResponse{
			JobID:    status.JobID,
			Status:   status.Status,
			Progress: status.Progress,
			Location: status.Location,
			Error:    status.Error,
		})
	}
}
