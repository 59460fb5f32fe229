package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
)

const (
	exportRetentionBatchSize = 200

	defaultExportMaxAge = 8 * 24 * time.Hour
)

type gcsClient interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

type exportRetentionRepo interface {
	ListExportsOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Export, error)
	DeleteExport(ctx context.Context, id uuid.UUID) error
}

// ExportRetentionJobParams configure the stale export cleanup.
type ExportRetentionJobParams struct {
	Logger     *logger.Logger
	Repository exportRetentionRepo
	Storage    gcsClient
	Bucket     string
	MaxAge     time.Duration
}

// NewExportRetentionJob deletes export artifacts past the cache freshness
// window plus a grace period. The GCS object goes first so a surviving row
// always points at a real object.
func NewExportRetentionJob(params ExportRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("export repository required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("storage client required")
	}
	if params.Bucket == "" {
		return nil, fmt.Errorf("storage bucket required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultExportMaxAge
	}
	return &exportRetentionJob{
		logg:   params.Logger,
		repo:   params.Repository,
		gcs:    params.Storage,
		bucket: params.Bucket,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

type exportRetentionJob struct {
	logg   *logger.Logger
	repo   exportRetentionRepo
	gcs    gcsClient
	bucket string
	maxAge time.Duration
	now    func() time.Time
}

func (j *exportRetentionJob) Name() string { return "export-retention" }

func (j *exportRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)

	var errs error
	deleted := 0
	for {
		exports, err := j.repo.ListExportsOlderThan(ctx, cutoff, exportRetentionBatchSize)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list stale exports: %w", err))
		}
		if len(exports) == 0 {
			break
		}

		progressed := false
		for _, export := range exports {
			if err := j.deleteExport(ctx, export); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("export %s: %w", export.ID, err))
				continue
			}
			deleted++
			progressed = true
		}
		// A batch where every delete failed would refill identically; stop
		// instead of spinning for the rest of the cycle.
		if !progressed {
			break
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":          cutoff,
		"deleted_exports": deleted,
	})
	j.logg.Info(logCtx, "export retention cleanup complete")
	return errs
}

func (j *exportRetentionJob) deleteExport(ctx context.Context, export models.Export) error {
	if err := j.gcs.DeleteObject(ctx, j.bucket, export.StorageKey); err != nil {
		return fmt.Errorf("delete object %s: %w", export.StorageKey, err)
	}
	if err := j.repo.DeleteExport(ctx, export.ID); err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	return nil
}
