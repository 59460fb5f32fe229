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

	"github.com/hirekitlabs/hirekit-backend/api/middleware"
	internalkits "github.com/hirekitlabs/hirekit-backend/internal/kits"
	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

type stubKitsService struct {
	createFn func(ctx context.Context, input internalkits.CreateInput) (*models.Kit, error)
	getFn    func(ctx context.Context, kitID uuid.UUID) (*models.Kit, error)
	regenFn  func(ctx context.Context, input internalkits.RegenerateInput) (*models.Kit, error)
	editFn   func(ctx context.Context, input internalkits.EditInput) (*models.Kit, error)
	listFn   func(ctx context.Context, query internalkits.ListQuery) (*internalkits.ListResult, error)
}

func (s stubKitsService) Create(ctx context.Context, input internalkits.CreateInput) (*models.Kit, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return nil, nil
}

func (s stubKitsService) Get(ctx context.Context, kitID uuid.UUID) (*models.Kit, error) {
	if s.getFn != nil {
		return s.getFn(ctx, kitID)
	}
	return nil, nil
}

func (s stubKitsService) RegenerateSection(ctx context.Context, input internalkits.RegenerateInput) (*models.Kit, error) {
	if s.regenFn != nil {
		return s.regenFn(ctx, input)
	}
	return nil, nil
}

func (s stubKitsService) EditSection(ctx context.Context, input internalkits.EditInput) (*models.Kit, error) {
	if s.editFn != nil {
		return s.editFn(ctx, input)
	}
	return nil, nil
}

func (s stubKitsService) List(ctx context.Context, query internalkits.ListQuery) (*internalkits.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return &internalkits.ListResult{}, nil
}

func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func withKitID(req *http.Request, kitID uuid.UUID) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("kitId", kitID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func withKitSection(req *http.Request, kitID uuid.UUID, section string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("kitId", kitID.String())
	rc.URLParams.Add("section", section)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func sampleKit(kitID uuid.UUID) *models.Kit {
	return &models.Kit{
		ID:             kitID,
		OrganizationID: uuid.New(),
		CreatedBy:      uuid.New(),
		Title:          "Backend Engineer",
		Status:         enums.KitStatusGenerated,
	}
}

func TestKitCreate(t *testing.T) {
	actorID := uuid.New()
	orgID := uuid.New()
	kitID := uuid.New()

	var captured internalkits.CreateInput
	svc := stubKitsService{
		createFn: func(ctx context.Context, input internalkits.CreateInput) (*models.Kit, error) {
			captured = input
			return sampleKit(kitID), nil
		},
	}

	body := `{"organization_id":"` + orgID.String() + `","mode":"express","role_title":"Backend Engineer"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/kits", strings.NewReader(body)), actorID)
	resp := httptest.NewRecorder()
	KitCreate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	if captured.OrganizationID != orgID {
		t.Fatalf("unexpected organization id %s", captured.OrganizationID)
	}
	if captured.ActorID != actorID {
		t.Fatalf("unexpected actor id %s", captured.ActorID)
	}
	if captured.Intake.RoleTitle != "Backend Engineer" {
		t.Fatalf("unexpected role title %q", captured.Intake.RoleTitle)
	}

	var envelope struct {
		Data internalkits.Response `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != kitID {
		t.Fatalf("unexpected kit id %s", envelope.Data.ID)
	}
}

func TestKitCreateRequiresIdentity(t *testing.T) {
	called := false
	svc := stubKitsService{
		createFn: func(ctx context.Context, input internalkits.CreateInput) (*models.Kit, error) {
			called = true
			return nil, nil
		},
	}

	body := `{"organization_id":"` + uuid.NewString() + `","mode":"express","role_title":"Backend Engineer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kits", strings.NewReader(body))
	resp := httptest.NewRecorder()
	KitCreate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if called {
		t.Fatal("service should not be invoked without identity")
	}
}

func TestKitCreateRejectsMissingTitle(t *testing.T) {
	svc := stubKitsService{}
	body := `{"organization_id":"` + uuid.NewString() + `","mode":"express"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/kits", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	KitCreate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestKitCreateRejectsUnknownFields(t *testing.T) {
	svc := stubKitsService{}
	body := `{"organization_id":"` + uuid.NewString() + `","mode":"express","role_title":"x","tier":"premium"}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/kits", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	KitCreate(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestKitDetail(t *testing.T) {
	kitID := uuid.New()
	svc := stubKitsService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Kit, error) {
			if id != kitID {
				t.Fatalf("unexpected id %s", id)
			}
			return sampleKit(kitID), nil
		},
	}

	req := withKitID(httptest.NewRequest(http.MethodGet, "/", nil), kitID)
	resp := httptest.NewRecorder()
	KitDetail(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data internalkits.Response `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != kitID || envelope.Data.Status != enums.KitStatusGenerated {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestKitDetailInvalidID(t *testing.T) {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("kitId", "not-a-uuid")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	resp := httptest.NewRecorder()
	KitDetail(stubKitsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestKitRegenerateSection(t *testing.T) {
	actorID := uuid.New()
	kitID := uuid.New()

	var captured internalkits.RegenerateInput
	svc := stubKitsService{
		regenFn: func(ctx context.Context, input internalkits.RegenerateInput) (*models.Kit, error) {
			captured = input
			return sampleKit(kitID), nil
		},
	}

	req := withUser(httptest.NewRequest(http.MethodPost, "/", nil), actorID)
	req = withKitSection(req, kitID, "job_post")
	resp := httptest.NewRecorder()
	KitRegenerateSection(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if captured.KitID != kitID || captured.Section != enums.SectionJobPost || captured.ActorID != actorID {
		t.Fatalf("unexpected input %+v", captured)
	}
}

func TestKitRegenerateSectionUnknownSection(t *testing.T) {
	called := false
	svc := stubKitsService{
		regenFn: func(ctx context.Context, input internalkits.RegenerateInput) (*models.Kit, error) {
			called = true
			return nil, nil
		},
	}

	req := withUser(httptest.NewRequest(http.MethodPost, "/", nil), uuid.New())
	req = withKitSection(req, uuid.New(), "cover_letter")
	resp := httptest.NewRecorder()
	KitRegenerateSection(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatal("service should not be invoked for unknown section")
	}
}
