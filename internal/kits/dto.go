package kits

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

// Response is the public shape of a kit. Content is the effective view: the
// edited overlay wins per section, generation fills the rest.
type Response struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	Title          string            `json:"title"`
	Status         enums.KitStatus   `json:"status"`
	Intake         *types.Intake     `json:"intake,omitempty"`
	Content        *types.KitContent `json:"content,omitempty"`
	RegenCounts    map[string]int    `json:"regen_counts"`
	RequiresReview bool              `json:"requires_review"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// AdminResponse adds the review-side fields to the public shape.
type AdminResponse struct {
	Response
	CreatedBy uuid.UUID `json:"created_by"`
	QANotes   *string   `json:"qa_notes,omitempty"`
}

// ListResponse wraps one page of kits plus the next page cursor.
type ListResponse struct {
	Kits       []AdminResponse `json:"kits"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// NewResponse maps a persisted kit to its public shape.
func NewResponse(kit models.Kit) Response {
	counts := make(map[string]int, len(enums.AllSectionKeys()))
	for _, key := range enums.AllSectionKeys() {
		if n := kit.RegenCount(key); n > 0 {
			counts[string(key)] = n
		}
	}
	return Response{
		ID:             kit.ID,
		OrganizationID: kit.OrganizationID,
		Title:          kit.Title,
		Status:         kit.Status,
		Intake:         kit.Intake,
		Content:        types.EffectiveContent(kit.GeneratedContent, kit.EditedContent),
		RegenCounts:    counts,
		RequiresReview: kit.RequiresReview,
		CreatedAt:      kit.CreatedAt,
		UpdatedAt:      kit.UpdatedAt,
	}
}

// NewAdminResponse maps a persisted kit to the admin review shape.
func NewAdminResponse(kit models.Kit) AdminResponse {
	return AdminResponse{
		Response:  NewResponse(kit),
		CreatedBy: kit.CreatedBy,
		QANotes:   kit.QANotes,
	}
}

// NewListResponse maps a repository page to the admin list shape.
func NewListResponse(result ListResult) ListResponse {
	out := ListResponse{
		Kits:       make([]AdminResponse, 0, len(result.Kits)),
		NextCursor: result.NextCursor,
	}
	for _, kit := range result.Kits {
		out.Kits = append(out.Kits, NewAdminResponse(kit))
	}
	return out
}
