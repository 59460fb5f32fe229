package generation

import (
	"context"

	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

// Generator produces hiring-kit documents from a normalized intake. The kit
// service depends on this interface so tests can stub the model call.
type Generator interface {
	// GenerateKit returns the full nine-document set for the role.
	GenerateKit(ctx context.Context, intake *types.Intake) (*types.KitContent, error)
	// GenerateSection returns a fresh document for exactly one section.
	GenerateSection(ctx context.Context, intake *types.Intake, key enums.SectionKey) (*types.SectionDoc, error)
}
