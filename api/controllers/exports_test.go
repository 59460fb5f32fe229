package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/internal/exports"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

type stubExportService struct {
	requestFn func(ctx context.Context, input exports.RequestInput) (*exports.RequestResult, error)
	statusFn  func(ctx context.Context, jobID uuid.UUID) (*exports.JobStatusResult, error)
}

func (s stubExportService) RequestExport(ctx context.Context, input exports.RequestInput) (*exports.RequestResult, error) {
	if s.requestFn != nil {
		return s.requestFn(ctx, input)
	}
	return &exports.RequestResult{}, nil
}

func (s stubExportService) JobStatus(ctx context.Context, jobID uuid.UUID) (*exports.JobStatusResult, error) {
	if s.statusFn != nil {
		return s.statusFn(ctx, jobID)
	}
	return &exports.JobStatusResult{}, nil
}

func (s stubExportService) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	return nil
}

func withJobID(req *http.Request, raw string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("jobId", raw)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestExportRequestReady(t *testing.T) {
	actorID := uuid.New()
	kitID := uuid.New()
	exportID := uuid.New()

	var captured exports.RequestInput
	svc := stubExportService{
		requestFn: func(ctx context.Context, input exports.RequestInput) (*exports.RequestResult, error) {
			captured = input
			return &exports.RequestResult{
				Ready:    true,
				ExportID: exportID,
				Location: "https://storage.googleapis.com/hirekit-exports/kit.pdf",
			}, nil
		},
	}

	req := withUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"combined"}`)), actorID)
	req = withKitID(req, kitID)
	resp := httptest.NewRecorder()
	ExportRequest(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if captured.KitID != kitID || captured.Kind != enums.ExportKindCombined || captured.ActorID != actorID {
		t.Fatalf("unexpected input %+v", captured)
	}

	var envelope struct {
		Data exportReadyResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != "ready" || envelope.Data.ExportID != exportID || envelope.Data.Location == "" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestExportRequestQueued(t *testing.T) {
	jobID := uuid.New()
	svc := stubExportService{
		requestFn: func(ctx context.Context, input exports.RequestInput) (*exports.RequestResult, error) {
			return &exports.RequestResult{Ready: false, JobID: jobID}, nil
		},
	}

	req := withUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"archive"}`)), uuid.New())
	req = withKitID(req, uuid.New())
	resp := httptest.NewRecorder()
	ExportRequest(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d (%s)", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data exportQueuedResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != "queued" || envelope.Data.JobID != jobID {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
	if !strings.Contains(envelope.Data.StatusURL, jobID.String()) {
		t.Fatalf("status url %q does not reference job", envelope.Data.StatusURL)
	}
}

func TestExportRequestInvalidKind(t *testing.T) {
	called := false
	svc := stubExportService{
		requestFn: func(ctx context.Context, input exports.RequestInput) (*exports.RequestResult, error) {
			called = true
			return nil, nil
		},
	}

	req := withUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"docx"}`)), uuid.New())
	req = withKitID(req, uuid.New())
	resp := httptest.NewRecorder()
	ExportRequest(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatal("service should not be invoked for unknown kind")
	}
}

func TestExportJobStatusCompleted(t *testing.T) {
	jobID := uuid.New()
	svc := stubExportService{
		statusFn: func(ctx context.Context, id uuid.UUID) (*exports.JobStatusResult, error) {
			if id != jobID {
				t.Fatalf("unexpected id %s", id)
			}
			return &exports.JobStatusResult{
				JobID:    jobID,
				Status:   enums.ExportJobStatusCompleted,
				Progress: 100,
				Location: "https://storage.googleapis.com/hirekit-exports/kit.zip",
			}, nil
		},
	}

	req := withJobID(httptest.NewRequest(http.MethodGet, "/", nil), jobID.String())
	resp := httptest.NewRecorder()
	ExportJobStatus(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data exportJobStatusResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.ExportJobStatusCompleted || envelope.Data.Location == "" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestExportJobStatusInvalidID(t *testing.T) {
	req := withJobID(httptest.NewRequest(http.MethodGet, "/", nil), "not-a-uuid")
	resp := httptest.NewRecorder()
	ExportJobStatus(stubExportService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
