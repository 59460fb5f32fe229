package visibility

import (
	"testing"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/errors"
)

func exportableFixture() (*models.Kit, *models.Order) {
	kit := &models.Kit{
		ID:     uuid.New(),
		Status: enums.KitStatusGenerated,
	}
	order := &models.Order{
		ID:     uuid.New(),
		KitID:  kit.ID,
		Status: enums.OrderStatusPaid,
	}
	return kit, order
}

func TestEnsureKitExportable(t *testing.T) {
	t.Run("kit missing", func(t *testing.T) {
		_, order := exportableFixture()
		err := EnsureKitExportable(ExportEligibilityInput{Order: order})
		if err == nil {
			t.Fatal("expected not found")
		}
		if errors.As(err).Code() != errors.CodeNotFound {
			t.Fatalf("expected not found code, got %s", errors.As(err).Code())
		}
	})
	t.Run("order missing", func(t *testing.T) {
		kit, _ := exportableFixture()
		err := EnsureKitExportable(ExportEligibilityInput{Kit: kit})
		if err == nil {
			t.Fatal("expected forbidden")
		}
		if errors.As(err).Code() != errors.CodeForbidden {
			t.Fatalf("expected forbidden code, got %s", errors.As(err).Code())
		}
	})
	t.Run("order for another kit", func(t *testing.T) {
		kit, order := exportableFixture()
		order.KitID = uuid.New()
		err := EnsureKitExportable(ExportEligibilityInput{Kit: kit, Order: order})
		if err == nil || errors.As(err).Code() != errors.CodeForbidden {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})
	t.Run("unpaid order", func(t *testing.T) {
		for _, status := range []enums.OrderStatus{
			enums.OrderStatusDraft,
			enums.OrderStatusAwaitingPayment,
			enums.OrderStatusQAPending,
		} {
			kit, order := exportableFixture()
			order.Status = status
			err := EnsureKitExportable(ExportEligibilityInput{Kit: kit, Order: order})
			if err == nil || errors.As(err).Code() != errors.CodeForbidden {
				t.Fatalf("status %s: expected forbidden, got %v", status, err)
			}
		}
	})
	t.Run("exportable statuses pass", func(t *testing.T) {
		for _, status := range enums.ExportableOrderStatuses {
			kit, order := exportableFixture()
			order.Status = status
			if err := EnsureKitExportable(ExportEligibilityInput{Kit: kit, Order: order}); err != nil {
				t.Fatalf("status %s: unexpected error %v", status, err)
			}
		}
	})
}
