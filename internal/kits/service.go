package kits

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/internal/audit"
	"github.com/hirekitlabs/hirekit-backend/internal/generation"
	"github.com/hirekitlabs/hirekit-backend/internal/intake"
	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox/payloads"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type auditAppender interface {
	AppendTx(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

// settledOrderFinder reports whether a kit has an order in a paid state.
// Satisfied by the orders repository.
type settledOrderFinder interface {
	FindSettledByKit(ctx context.Context, kitID uuid.UUID) (*models.Order, error)
}

// Service owns kit content: creation with full generation, per-section
// regeneration behind the free limit, and the admin edit overlay.
type Service interface {
	// Create normalizes the intake, inserts the kit, and runs the full
	// generation. The generator call happens outside any transaction; a
	// failure flips the kit back to draft and surfaces a dependency error.
	Create(ctx context.Context, input CreateInput) (*models.Kit, error)
	Get(ctx context.Context, kitID uuid.UUID) (*models.Kit, error)
	// RegenerateSection replaces one section in the edited overlay. Kits
	// without a settled order get three regenerations per section; the
	// counter only ever grows.
	RegenerateSection(ctx context.Context, input RegenerateInput) (*models.Kit, error)
	// EditSection writes an admin-authored document into the edited overlay.
	EditSection(ctx context.Context, input EditInput) (*models.Kit, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
}

// CreateInput carries the raw intake plus the creating user's context.
type CreateInput struct {
	Intake         intake.Input
	OrganizationID uuid.UUID
	ActorID        uuid.UUID
}

// RegenerateInput identifies one section of one kit to regenerate.
type RegenerateInput struct {
	KitID   uuid.UUID
	Section enums.SectionKey
	ActorID uuid.UUID
}

// EditInput carries an admin replacement document for one section.
type EditInput struct {
	KitID   uuid.UUID
	Section enums.SectionKey
	Doc     types.SectionDoc
	ActorID uuid.UUID
}

type service struct {
	repo       Repository
	orders     settledOrderFinder
	generator  generation.Generator
	tx         txRunner
	outbox     outboxEmitter
	audit      auditAppender
	regenLimit int
}

// NewService builds the kit service. freeRegenLimit is the per-section
// regeneration allowance for kits without a settled order.
func NewService(repo Repository, orders settledOrderFinder, generator generation.Generator, tx txRunner, emitter outboxEmitter, recorder auditAppender, freeRegenLimit int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("kits repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("paid order finder required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if freeRegenLimit <= 0 {
		return nil, fmt.Errorf("free regen limit must be positive")
	}
	return &service{
		repo:       repo,
		orders:     orders,
		generator:  generator,
		tx:         tx,
		outbox:     emitter,
		audit:      recorder,
		regenLimit: freeRegenLimit,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Kit, error) {
	if input.OrganizationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	normalized, err := intake.Normalize(input.Intake)
	if err != nil {
		return nil, err
	}

	kit := &models.Kit{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		CreatedBy:      input.ActorID,
		Title:          normalized.RoleTitle,
		Status:         enums.KitStatusDraft,
		Intake:         normalized,
		RegenCounts:    types.JSONMap{},
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, kit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert kit")
		}
		err := s.audit.AppendTx(ctx, tx, audit.Entry{
			KitID:   &kit.ID,
			ActorID: &input.ActorID,
			Action:  enums.AuditKitCreated,
			After:   types.JSONMap{"status": string(enums.KitStatusDraft), "title": kit.Title},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventKitCreated,
			AggregateType: enums.AggregateKit,
			AggregateID:   kit.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data:          payloads.KitLifecycleEvent{KitID: kit.ID, Title: kit.Title, Status: enums.KitStatusDraft},
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, kit.ID, map[string]any{"status": enums.KitStatusGenerating}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark kit generating")
	}
	kit.Status = enums.KitStatusGenerating

	// No transaction is held across the model call.
	content, genErr := s.generator.GenerateKit(ctx, normalized)
	if genErr != nil {
		revertErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			changed, err := repo.UpdateGuarded(ctx, kit.ID, enums.KitStatusGenerating, map[string]any{
				"status": enums.KitStatusDraft,
			})
			if err != nil {
				return err
			}
			if !changed {
				return nil
			}
			return s.audit.AppendTx(ctx, tx, audit.Entry{
				KitID:   &kit.ID,
				ActorID: &input.ActorID,
				Action:  enums.AuditKitGenerationFailed,
				Before:  types.JSONMap{"status": string(enums.KitStatusGenerating)},
				After:   types.JSONMap{"status": string(enums.KitStatusDraft), "error": genErr.Error()},
			})
		})
		if revertErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, revertErr, "revert kit after generation failure")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, genErr, "generate kit content")
	}
	if content == nil || !content.IsComplete() {
		return nil, s.failIncompleteGeneration(ctx, kit.ID, input.ActorID)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		changed, err := repo.UpdateGuarded(ctx, kit.ID, enums.KitStatusGenerating, map[string]any{
			"status":            enums.KitStatusGenerated,
			"generated_content": content,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist generated content")
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "kit left generating state during generation")
		}
		err = s.audit.AppendTx(ctx, tx, audit.Entry{
			KitID:   &kit.ID,
			ActorID: &input.ActorID,
			Action:  enums.AuditKitGenerated,
			Before:  types.JSONMap{"status": string(enums.KitStatusGenerating)},
			After:   types.JSONMap{"status": string(enums.KitStatusGenerated)},
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventKitGenerated,
			AggregateType: enums.AggregateKit,
			AggregateID:   kit.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID},
			Data:          payloads.KitLifecycleEvent{KitID: kit.ID, Title: kit.Title, Status: enums.KitStatusGenerated},
		})
	})
	if err != nil {
		return nil, err
	}

	kit.Status = enums.KitStatusGenerated
	kit.GeneratedContent = content
	return kit, nil
}

func (s *service) Get(ctx context.Context, kitID uuid.UUID) (*models.Kit, error) {
	if kitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kit id required")
	}
	kit, err := s.repo.FindByID(ctx, kitID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "kit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kit")
	}
	return kit, nil
}

func (s *service) RegenerateSection(ctx context.Context, input RegenerateInput) (*models.Kit, error) {
	if input.KitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kit id required")
	}
	if !input.Section.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown section")
	}

	kit, err := s.Get(ctx, input.KitID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureHasContent(kit); err != nil {
		return nil, err
	}

	count := kit.RegenCount(input.Section)
	if count >= s.regenLimit {
		paid, err := s.hasSettledOrder(ctx, kit.ID)
		if err != nil {
			return nil, err
		}
		if !paid {
			return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "regeneration limit reached: upgrade to continue")
		}
	}

	doc, err := s.generator.GenerateSection(ctx, kit.Intake, input.Section)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "regenerate section")
	}
	if doc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "generator returned empty section")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		fresh, err := repo.FindByID(ctx, kit.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload kit")
		}

		counts := fresh.RegenCounts
		if counts == nil {
			counts = types.JSONMap{}
		}
		counts[string(input.Section)] = fresh.RegenCount(input.Section) + 1

		updates := map[string]any{
			"edited_content": types.Merge(fresh.EditedContent, input.Section, doc),
			"regen_counts":   counts,
		}
		if err := repo.Update(ctx, kit.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist regenerated section")
		}

		return s.audit.AppendTx(ctx, tx, audit.Entry{
			KitID:   &kit.ID,
			ActorID: &input.ActorID,
			Action:  enums.AuditKitSectionRegenerated,
			Before:  types.JSONMap{"section": string(input.Section), "count": fresh.RegenCount(input.Section)},
			After:   types.JSONMap{"section": string(input.Section), "count": fresh.RegenCount(input.Section) + 1},
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, kit.ID)
}

func (s *service) EditSection(ctx context.Context, input EditInput) (*models.Kit, error) {
	if input.KitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kit id required")
	}
	if !input.Section.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown section")
	}
	if input.Doc.Title == "" || input.Doc.Body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "section title and body required")
	}

	kit, err := s.Get(ctx, input.KitID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureHasContent(kit); err != nil {
		return nil, err
	}

	doc := input.Doc
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		fresh, err := repo.FindByID(ctx, kit.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload kit")
		}

		updates := map[string]any{
			"edited_content": types.Merge(fresh.EditedContent, input.Section, &doc),
		}
		if err := repo.Update(ctx, kit.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist section edit")
		}

		return s.audit.AppendTx(ctx, tx, audit.Entry{
			KitID:   &kit.ID,
			ActorID: &input.ActorID,
			Action:  enums.AuditKitSectionEdited,
			After:   types.JSONMap{"section": string(input.Section)},
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, kit.ID)
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	result, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list kits")
	}
	return result, nil
}

// ensureHasContent refuses section operations before the full generation has
// landed.
func (s *service) ensureHasContent(kit *models.Kit) error {
	switch kit.Status {
	case enums.KitStatusGenerated, enums.KitStatusEditing, enums.KitStatusPublished:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "kit content not generated yet")
	}
}

func (s *service) hasSettledOrder(ctx context.Context, kitID uuid.UUID) (bool, error) {
	_, err := s.orders.FindSettledByKit(ctx, kitID)
	if err == nil {
		return true, nil
	}
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check paid orders for kit")
}

func (s *service) failIncompleteGeneration(ctx context.Context, kitID, actorID uuid.UUID) error {
	revertErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		changed, err := repo.UpdateGuarded(ctx, kitID, enums.KitStatusGenerating, map[string]any{
			"status": enums.KitStatusDraft,
		})
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return s.audit.AppendTx(ctx, tx, audit.Entry{
			KitID:   &kitID,
			ActorID: &actorID,
			Action:  enums.AuditKitGenerationFailed,
			Before:  types.JSONMap{"status": string(enums.KitStatusGenerating)},
			After:   types.JSONMap{"status": string(enums.KitStatusDraft), "error": "incomplete generation"},
		})
	})
	if revertErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, revertErr, "revert kit after generation failure")
	}
	return pkgerrors.New(pkgerrors.CodeDependency, "generator returned incomplete kit")
}
