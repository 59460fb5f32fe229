package visibility

import (
	"fmt"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
)

// ExportEligibilityInput drives the shared export gate for kit artifact requests.
type ExportEligibilityInput struct {
	Kit   *models.Kit
	Order *models.Order
}

// EnsureKitExportable enforces canonical rules so artifacts are only rendered
// for orders whose payment has settled.
func EnsureKitExportable(input ExportEligibilityInput) error {
	if input.Kit == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "kit not found")
	}
	if input.Order == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "kit has no order eligible for export")
	}
	if input.Order.KitID != input.Kit.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to this kit")
	}
	if !exportableStatus(input.Order.Status) {
		return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("order in status %s is not eligible for export", input.Order.Status))
	}
	return nil
}

func exportableStatus(status enums.OrderStatus) bool {
	for _, candidate := range enums.ExportableOrderStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}
