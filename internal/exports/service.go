package exports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/internal/audit"
	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox/payloads"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
	"github.com/hirekitlabs/hirekit-backend/pkg/visibility"
)

const (
	downloadURLTTL  = 15 * time.Minute
	contentTypePDF  = "application/pdf"
	contentTypeZip  = "application/zip"
	jobErrorMaxSize = 512
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type kitReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Kit, error)
}

type orderReader interface {
	FindExportableByKit(ctx context.Context, kitID uuid.UUID) (*models.Order, error)
}

type orderDeliverer interface {
	MarkDeliveredTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, actorID *uuid.UUID) error
}

type storageClient interface {
	UploadObject(ctx context.Context, bucket, object, contentType string, data []byte) error
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type auditAppender interface {
	AppendTx(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

// JobQueue hands queued export jobs to the worker.
type JobQueue interface {
	Enqueue(ctx context.Context, jobID uuid.UUID) error
}

// RequestInput identifies one export request.
type RequestInput struct {
	KitID   uuid.UUID
	Kind    enums.ExportKind
	ActorID uuid.UUID
}

// RequestResult is either an immediate download or a queued job.
type RequestResult struct {
	Ready    bool
	ExportID uuid.UUID
	Location string
	JobID    uuid.UUID
}

// JobStatusResult reports async job progress. Location is set only for
// completed jobs and Error only for failed ones; partial content is never
// exposed.
type JobStatusResult struct {
	JobID    uuid.UUID
	Status   enums.ExportJobStatus
	Progress int
	Location string
	Error    string
}

// Service renders kit exports, reusing fresh artifacts and falling back to
// the async queue when rendering cannot finish inline.
type Service interface {
	RequestExport(ctx context.Context, input RequestInput) (*RequestResult, error)
	JobStatus(ctx context.Context, jobID uuid.UUID) (*JobStatusResult, error)
	// ProcessJob runs one queued job end to end. It returns an error only
	// for transient failures that should be redelivered; job-level failures
	// are persisted on the job row.
	ProcessJob(ctx context.Context, jobID uuid.UUID) error
}

type service struct {
	repo      Repository
	kits      kitReader
	orders    orderReader
	deliverer orderDeliverer
	renderer  Renderer
	storage   storageClient
	bucket    string
	queue     JobQueue
	tx        txRunner
	outbox    outboxEmitter
	audit     auditAppender
	logger    *logger.Logger
	cfg       config.ExportsConfig
	now       func() time.Time
}

// NewService wires the export pipeline.
func NewService(
	repo Repository,
	kits kitReader,
	orders orderReader,
	deliverer orderDeliverer,
	renderer Renderer,
	storage storageClient,
	bucket string,
	queue JobQueue,
	tx txRunner,
	emitter outboxEmitter,
	recorder auditAppender,
	logg *logger.Logger,
	cfg config.ExportsConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("export repository required")
	}
	if kits == nil {
		return nil, fmt.Errorf("kit reader required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if deliverer == nil {
		return nil, fmt.Errorf("order deliverer required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	if storage == nil {
		return nil, fmt.Errorf("storage client required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket required")
	}
	if queue == nil {
		return nil, fmt.Errorf("job queue required")
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
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		kits:      kits,
		orders:    orders,
		deliverer: deliverer,
		renderer:  renderer,
		storage:   storage,
		bucket:    bucket,
		queue:     queue,
		tx:        tx,
		outbox:    emitter,
		audit:     recorder,
		logger:    logg,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

func (s *service) RequestExport(ctx context.Context, input RequestInput) (*RequestResult, error) {
	if input.KitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kit id required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown export kind")
	}

	kit, order, err := s.loadExportTarget(ctx, input.KitID)
	if err != nil {
		return nil, err
	}
	if err := visibility.EnsureKitExportable(visibility.ExportEligibilityInput{Kit: kit, Order: order}); err != nil {
		return nil, err
	}

	// Cache check: a fresh artifact short-circuits rendering entirely. The
	// download still counts as delivery for a paid or ready order.
	since := s.now().Add(-s.cfg.CacheTTL)
	fresh, err := s.repo.FindFreshExport(ctx, kit.ID, input.Kind, since)
	if err == nil {
		location, urlErr := s.downloadURL(fresh.StorageKey)
		if urlErr != nil {
			return nil, urlErr
		}
		if err := s.deliverOnly(ctx, order, input.ActorID); err != nil {
			return nil, err
		}
		return &RequestResult{Ready: true, ExportID: fresh.ID, Location: location}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up export cache")
	}

	renderCtx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
	defer cancel()
	art, renderErr := s.renderArtifact(renderCtx, kit, input.Kind)
	switch {
	case s.renderTimedOut(ctx, renderCtx, renderErr):
		return s.enqueueJob(ctx, kit, order, input.Kind, input.ActorID)
	case renderErr != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, renderErr, "render export")
	case int64(len(art.data)) > s.cfg.SyncSizeLimitBytes:
		return s.enqueueJob(ctx, kit, order, input.Kind, input.ActorID)
	}

	exportID := uuid.New()
	key := storageObjectKey(kit.ID, input.Kind, exportID)
	if err := s.storage.UploadObject(ctx, s.bucket, key, art.contentType, art.data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store export artifact")
	}

	export := art.toModel(exportID, kit.ID, input.Kind, key)
	actor := actorPtr(input.ActorID)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateExport(ctx, export); err != nil {
			return err
		}
		if err := s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			KitID:   &kit.ID,
			ActorID: actor,
			Action:  enums.AuditExportCompleted,
			After: types.JSONMap{
				"export_id":  export.ID.String(),
				"kind":       string(input.Kind),
				"size_bytes": export.SizeBytes,
			},
		}); err != nil {
			return err
		}
		return s.deliverer.MarkDeliveredTx(ctx, tx, order.ID, actor)
	})
	if err != nil {
		return nil, err
	}

	location, err := s.downloadURL(key)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Ready: true, ExportID: export.ID, Location: location}, nil
}

func (s *service) JobStatus(ctx context.Context, jobID uuid.UUID) (*JobStatusResult, error) {
	if jobID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job id required")
	}
	job, err := s.repo.FindJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "export job not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load export job")
	}

	result := &JobStatusResult{JobID: job.ID, Status: job.Status, Progress: job.Progress}
	switch job.Status {
	case enums.ExportJobStatusCompleted:
		if job.StorageKey == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "completed job has no artifact")
		}
		location, err := s.downloadURL(*job.StorageKey)
		if err != nil {
			return nil, err
		}
		result.Location = location
	case enums.ExportJobStatusFailed:
		if job.Error != nil {
			result.Error = *job.Error
		}
	}
	return result, nil
}

func (s *service) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	logCtx := s.logger.WithField(ctx, "export_job_id", jobID.String())

	job, err := s.repo.FindJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn(logCtx, "export job message references unknown job")
			return nil
		}
		return fmt.Errorf("load export job: %w", err)
	}
	if job.Status != enums.ExportJobStatusQueued {
		s.logger.Info(logCtx, "export job already handled")
		return nil
	}

	claimed, err := s.repo.ClaimJob(ctx, job.ID, s.now())
	if err != nil {
		return fmt.Errorf("claim export job: %w", err)
	}
	if !claimed {
		s.logger.Info(logCtx, "export job claimed elsewhere")
		return nil
	}

	kit, err := s.kits.FindByID(ctx, job.KitID)
	if err != nil {
		s.failJob(logCtx, job, fmt.Errorf("load kit: %w", err))
		return nil
	}

	art, err := s.renderArtifact(ctx, kit, job.Kind)
	if err != nil {
		s.failJob(logCtx, job, err)
		return nil
	}
	if err := s.repo.UpdateJobProgress(ctx, job.ID, 60); err != nil {
		s.logger.Warn(s.logger.WithField(logCtx, "error", err.Error()), "update export job progress")
	}

	exportID := uuid.New()
	key := storageObjectKey(kit.ID, job.Kind, exportID)
	if err := s.storage.UploadObject(ctx, s.bucket, key, art.contentType, art.data); err != nil {
		s.failJob(logCtx, job, fmt.Errorf("store export artifact: %w", err))
		return nil
	}

	order, err := s.orders.FindExportableByKit(ctx, job.KitID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.failJob(logCtx, job, fmt.Errorf("load order: %w", err))
		return nil
	}

	export := art.toModel(exportID, kit.ID, job.Kind, key)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateExport(ctx, export); err != nil {
			return err
		}
		completed, err := txRepo.CompleteJob(ctx, job.ID, key, s.now())
		if err != nil {
			return err
		}
		if !completed {
			// The timeout sweep already failed the job; discard this render.
			return pkgerrors.New(pkgerrors.CodeStateConflict, "export job is no longer processing")
		}
		if err := s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: orderIDPtr(order),
			KitID:   &kit.ID,
			Action:  enums.AuditExportCompleted,
			After: types.JSONMap{
				"export_id":  export.ID.String(),
				"job_id":     job.ID.String(),
				"kind":       string(job.Kind),
				"size_bytes": export.SizeBytes,
			},
		}); err != nil {
			return err
		}
		if order != nil {
			if err := s.deliverer.MarkDeliveredTx(ctx, tx, order.ID, nil); err != nil {
				return err
			}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventExportCompleted,
			AggregateType: enums.AggregateExport,
			AggregateID:   job.ID,
			Data: payloads.ExportLifecycleEvent{
				ExportJobID: job.ID,
				KitID:       kit.ID,
				Kind:        job.Kind,
				StorageKey:  key,
			},
			Version:    1,
			OccurredAt: s.now(),
		})
	})
	if err != nil {
		s.failJob(logCtx, job, err)
		return nil
	}

	s.logger.Info(logCtx, "export job completed")
	return nil
}

func (s *service) loadExportTarget(ctx context.Context, kitID uuid.UUID) (*models.Kit, *models.Order, error) {
	kit, err := s.kits.FindByID(ctx, kitID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kit")
	}
	if kit == nil {
		return nil, nil, nil
	}
	order, err := s.orders.FindExportableByKit(ctx, kitID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return kit, order, nil
}

// renderTimedOut distinguishes the sync deadline from a genuine render
// failure or caller cancellation.
func (s *service) renderTimedOut(ctx, renderCtx context.Context, renderErr error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(renderCtx.Err(), context.DeadlineExceeded) {
		return true
	}
	return renderErr != nil && errors.Is(renderErr, context.DeadlineExceeded)
}

type renderedArtifact struct {
	data        []byte
	contentType string
	assets      []models.ExportAsset
}

func (a renderedArtifact) toModel(id, kitID uuid.UUID, kind enums.ExportKind, key string) *models.Export {
	return &models.Export{
		ID:         id,
		KitID:      kitID,
		Kind:       kind,
		StorageKey: key,
		SizeBytes:  int64(len(a.data)),
		Assets:     a.assets,
	}
}

func (s *service) renderArtifact(ctx context.Context, kit *models.Kit, kind enums.ExportKind) (*renderedArtifact, error) {
	switch kind {
	case enums.ExportKindCombined:
		data, err := s.renderer.RenderPDF(ctx, BuildCombinedDocument(kit))
		if err != nil {
			return nil, err
		}
		return &renderedArtifact{data: data, contentType: contentTypePDF}, nil
	case enums.ExportKindArchive:
		entries, failures := renderArchiveEntries(ctx, s.renderer, kit)
		if failures != nil {
			logCtx := s.logger.WithField(ctx, "kit_id", kit.ID.String())
			s.logger.Warn(s.logger.WithField(logCtx, "error", failures.Error()), "archive sections degraded to placeholders")
		}
		data, err := buildArchive(entries)
		if err != nil {
			return nil, err
		}
		assets := make([]models.ExportAsset, 0, len(entries))
		for i, entry := range entries {
			assets = append(assets, models.ExportAsset{
				SectionKey: entry.Key,
				StorageKey: archiveFileName(i, entry.Key),
				SizeBytes:  int64(len(entry.Data)),
				Fallback:   entry.Fallback,
			})
		}
		return &renderedArtifact{data: data, contentType: contentTypeZip, assets: assets}, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown export kind")
	}
}

func (s *service) enqueueJob(ctx context.Context, kit *models.Kit, order *models.Order, kind enums.ExportKind, actorID uuid.UUID) (*RequestResult, error) {
	job := &models.ExportJob{
		ID:     uuid.New(),
		KitID:  kit.ID,
		Kind:   kind,
		Status: enums.ExportJobStatusQueued,
	}
	actor := actorPtr(actorID)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateJob(ctx, job); err != nil {
			return err
		}
		return s.audit.AppendTx(ctx, tx, audit.Entry{
			OrderID: &order.ID,
			KitID:   &kit.ID,
			ActorID: actor,
			Action:  enums.AuditExportRequested,
			After: types.JSONMap{
				"job_id": job.ID.String(),
				"kind":   string(kind),
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue export job")
	}

	// An unpublished row stays queued until the timeout sweep fails it, so a
	// publish error is surfaced rather than silently parked.
	if err := s.queue.Enqueue(ctx, job.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish export job")
	}
	return &RequestResult{JobID: job.ID}, nil
}

func (s *service) deliverOnly(ctx context.Context, order *models.Order, actorID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.deliverer.MarkDeliveredTx(ctx, tx, order.ID, actorPtr(actorID))
	})
}

func (s *service) failJob(ctx context.Context, job *models.ExportJob, cause error) {
	message := cause.Error()
	if len(message) > jobErrorMaxSize {
		message = message[:jobErrorMaxSize]
	}

	flipped, err := s.repo.FailJobFrom(ctx, job.ID, enums.ExportJobStatusProcessing, message, s.now())
	if err != nil {
		s.logger.Error(ctx, "mark export job failed", err)
		return
	}
	if !flipped {
		return
	}
	s.logger.Error(ctx, "export job failed", cause)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.audit.AppendTx(ctx, tx, audit.Entry{
			KitID:  &job.KitID,
			Action: enums.AuditExportFailed,
			After: types.JSONMap{
				"job_id": job.ID.String(),
				"kind":   string(job.Kind),
				"error":  message,
			},
		}); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventExportFailed,
			AggregateType: enums.AggregateExport,
			AggregateID:   job.ID,
			Data: payloads.ExportLifecycleEvent{
				ExportJobID: job.ID,
				KitID:       job.KitID,
				Kind:        job.Kind,
				Error:       message,
			},
			Version:    1,
			OccurredAt: s.now(),
		})
	})
	if err != nil {
		s.logger.Error(ctx, "record export job failure", err)
	}
}

func (s *service) downloadURL(key string) (string, error) {
	location, err := s.storage.SignedReadURL(s.bucket, key, downloadURLTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}
	return location, nil
}

func storageObjectKey(kitID uuid.UUID, kind enums.ExportKind, exportID uuid.UUID) string {
	ext := "pdf"
	if kind == enums.ExportKindArchive {
		ext = "zip"
	}
	return fmt.Sprintf("exports/%s/%s/%s.%s", kitID, kind, exportID, ext)
}

func actorPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func orderIDPtr(order *models.Order) *uuid.UUID {
	if order == nil {
		return nil
	}
	return &order.ID
}
