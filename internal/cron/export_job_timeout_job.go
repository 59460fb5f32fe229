package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/internal/audit"
	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

const (
	exportTimeoutMessage   = "export timed out"
	exportTimeoutBatchSize = 100

	defaultProcessingTTL = 10 * time.Minute
	defaultQueuedTTL     = 30 * time.Minute
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditAppender interface {
	AppendTx(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

type stuckJobRepo interface {
	ListStuckJobs(ctx context.Context, processingBefore, queuedBefore time.Time, limit int) ([]models.ExportJob, error)
	FailJobFrom(ctx context.Context, id uuid.UUID, expected enums.ExportJobStatus, message string, finishedAt time.Time) (bool, error)
}

// ExportJobTimeoutJobParams configure the stuck export job sweep.
type ExportJobTimeoutJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Repository    stuckJobRepo
	Audit         auditAppender
	ProcessingTTL time.Duration
	QueuedTTL     time.Duration
}

// NewExportJobTimeoutJob fails export jobs stuck in processing or abandoned
// in queued. The flip is status-guarded so a worker finishing concurrently
// wins; its CompleteJob guard discards the late render on the other side.
func NewExportJobTimeoutJob(params ExportJobTimeoutJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("export repository required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	processingTTL := params.ProcessingTTL
	if processingTTL <= 0 {
		processingTTL = defaultProcessingTTL
	}
	queuedTTL := params.QueuedTTL
	if queuedTTL <= 0 {
		queuedTTL = defaultQueuedTTL
	}
	return &exportJobTimeoutJob{
		logg:          params.Logger,
		db:            params.DB,
		repo:          params.Repository,
		audit:         params.Audit,
		processingTTL: processingTTL,
		queuedTTL:     queuedTTL,
		now:           time.Now,
	}, nil
}

type exportJobTimeoutJob struct {
	logg          *logger.Logger
	db            txRunner
	repo          stuckJobRepo
	audit         auditAppender
	processingTTL time.Duration
	queuedTTL     time.Duration
	now           func() time.Time
}

func (j *exportJobTimeoutJob) Name() string { return "export-job-timeout" }

func (j *exportJobTimeoutJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	stuck, err := j.repo.ListStuckJobs(ctx, now.Add(-j.processingTTL), now.Add(-j.queuedTTL), exportTimeoutBatchSize)
	if err != nil {
		return fmt.Errorf("list stuck export jobs: %w", err)
	}
	if len(stuck) == 0 {
		return nil
	}

	var errs error
	failed := 0
	for _, job := range stuck {
		flipped, err := j.failJob(ctx, job, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("job %s: %w", job.ID, err))
			continue
		}
		if flipped {
			failed++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"stuck_jobs":  len(stuck),
		"failed_jobs": failed,
	})
	j.logg.Info(logCtx, "export job timeout sweep complete")
	return errs
}

func (j *exportJobTimeoutJob) failJob(ctx context.Context, job models.ExportJob, now time.Time) (bool, error) {
	flipped, err := j.repo.FailJobFrom(ctx, job.ID, job.Status, exportTimeoutMessage, now)
	if err != nil {
		return false, fmt.Errorf("fail job: %w", err)
	}
	if !flipped {
		// The worker got there first; nothing to record.
		return false, nil
	}

	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		return j.audit.AppendTx(ctx, tx, audit.Entry{
			KitID:  &job.KitID,
			Action: enums.AuditExportTimedOut,
			After: types.JSONMap{
				"job_id":       job.ID.String(),
				"kind":         string(job.Kind),
				"stuck_status": string(job.Status),
			},
		})
	})
	if err != nil {
		return true, fmt.Errorf("audit timed out job: %w", err)
	}
	return true, nil
}
