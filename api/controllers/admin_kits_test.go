package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	internalkits "github.com/hirekitlabs/hirekit-backend/internal/kits"
	internalorders "github.com/hirekitlabs/hirekit-backend/internal/orders"
	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
)

func TestAdminKitListFilters(t *testing.T) {
	kitID := uuid.New()
	var captured internalkits.ListQuery
	svc := stubKitsService{
		listFn: func(ctx context.Context, query internalkits.ListQuery) (*internalkits.ListResult, error) {
			captured = query
			return &internalkits.ListResult{
				Kits:       []models.Kit{*sampleKit(kitID)},
				NextCursor: "cursor-2",
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/?limit=5&status=editing&requires_review=true&cursor=cursor-1", nil)
	resp := httptest.NewRecorder()
	AdminKitList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if captured.Pagination.Limit != 5 || captured.Pagination.Cursor != "cursor-1" {
		t.Fatalf("unexpected pagination %+v", captured.Pagination)
	}
	if captured.Status == nil || *captured.Status != enums.KitStatusEditing {
		t.Fatalf("unexpected status filter %v", captured.Status)
	}
	if captured.RequiresReview == nil || !*captured.RequiresReview {
		t.Fatalf("unexpected requires_review filter %v", captured.RequiresReview)
	}

	var envelope struct {
		Data internalkits.ListResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Kits) != 1 || envelope.Data.Kits[0].ID != kitID {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
	if envelope.Data.NextCursor != "cursor-2" {
		t.Fatalf("unexpected cursor %q", envelope.Data.NextCursor)
	}
}

func TestAdminKitListInvalidStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?status=archived", nil)
	resp := httptest.NewRecorder()
	AdminKitList(stubKitsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminKitDetailIncludesReviewFields(t *testing.T) {
	kitID := uuid.New()
	notes := "pricing section reworked"
	svc := stubKitsService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Kit, error) {
			kit := sampleKit(kitID)
			kit.QANotes = &notes
			return kit, nil
		},
	}

	req := withKitID(httptest.NewRequest(http.MethodGet, "/", nil), kitID)
	resp := httptest.NewRecorder()
	AdminKitDetail(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data internalkits.AdminResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.QANotes == nil || *envelope.Data.QANotes != notes {
		t.Fatalf("expected qa notes in payload, got %+v", envelope.Data)
	}
}

func TestAdminKitEditSection(t *testing.T) {
	actorID := uuid.New()
	kitID := uuid.New()

	var captured internalkits.EditInput
	svc := stubKitsService{
		editFn: func(ctx context.Context, input internalkits.EditInput) (*models.Kit, error) {
			captured = input
			return sampleKit(kitID), nil
		},
	}

	body := `{"title":"Scorecard","body":"Rate candidates on the five competencies.","bullets":["Ownership","Communication"]}`
	req := withUser(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)), actorID)
	req = withKitSection(req, kitID, "scorecard")
	resp := httptest.NewRecorder()
	AdminKitEditSection(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if captured.KitID != kitID || captured.Section != enums.SectionScorecard || captured.ActorID != actorID {
		t.Fatalf("unexpected input %+v", captured)
	}
	if captured.Doc.Title != "Scorecard" || len(captured.Doc.Bullets) != 2 {
		t.Fatalf("unexpected doc %+v", captured.Doc)
	}
}

func TestAdminKitEditSectionRequiresBodyField(t *testing.T) {
	req := withUser(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title":"Scorecard"}`)), uuid.New())
	req = withKitSection(req, uuid.New(), "scorecard")
	resp := httptest.NewRecorder()
	AdminKitEditSection(stubKitsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminKitApprove(t *testing.T) {
	actorID := uuid.New()
	kitID := uuid.New()

	var captured internalorders.ApproveInput
	ordersSvc := stubOrdersService{
		approveFn: func(ctx context.Context, input internalorders.ApproveInput) error {
			captured = input
			return nil
		},
	}
	kitsSvc := stubKitsService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Kit, error) {
			kit := sampleKit(kitID)
			kit.Status = enums.KitStatusPublished
			return kit, nil
		},
	}

	req := withAdmin(httptest.NewRequest(http.MethodPost, "/", nil), actorID)
	req = withKitID(req, kitID)
	resp := httptest.NewRecorder()
	AdminKitApprove(ordersSvc, kitsSvc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if captured.KitID != kitID || captured.ActorID != actorID || captured.Role != string(enums.UserRoleAdmin) {
		t.Fatalf("unexpected input %+v", captured)
	}

	var envelope struct {
		Data internalkits.AdminResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.KitStatusPublished {
		t.Fatalf("unexpected status %s", envelope.Data.Status)
	}
}

func TestAdminKitApproveStateConflict(t *testing.T) {
	ordersSvc := stubOrdersService{
		approveFn: func(ctx context.Context, input internalorders.ApproveInput) error {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "kit is not awaiting review")
		},
	}

	req := withAdmin(httptest.NewRequest(http.MethodPost, "/", nil), uuid.New())
	req = withKitID(req, uuid.New())
	resp := httptest.NewRecorder()
	AdminKitApprove(ordersSvc, stubKitsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}
