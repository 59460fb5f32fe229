package exports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

// Repository persists exports and export jobs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateExport(ctx context.Context, export *models.Export) error
	// FindFreshExport returns the newest export for (kit, kind) created after
	// since, or gorm.ErrRecordNotFound.
	FindFreshExport(ctx context.Context, kitID uuid.UUID, kind enums.ExportKind, since time.Time) (*models.Export, error)
	ListExportsOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Export, error)
	DeleteExport(ctx context.Context, id uuid.UUID) error

	CreateJob(ctx context.Context, job *models.ExportJob) error
	FindJob(ctx context.Context, id uuid.UUID) (*models.ExportJob, error)
	// ClaimJob flips a queued job to processing; the boolean reports whether
	// this caller won the claim.
	ClaimJob(ctx context.Context, id uuid.UUID, startedAt time.Time) (bool, error)
	UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int) error
	CompleteJob(ctx context.Context, id uuid.UUID, storageKey string, finishedAt time.Time) (bool, error)
	// FailJobFrom flips the job to failed only while it still has the
	// expected status.
	FailJobFrom(ctx context.Context, id uuid.UUID, expected enums.ExportJobStatus, message string, finishedAt time.Time) (bool, error)
	ListStuckJobs(ctx context.Context, processingBefore, queuedBefore time.Time, limit int) ([]models.ExportJob, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an export repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateExport(ctx context.Context, export *models.Export) error {
	if export.ID == uuid.Nil {
		export.ID = uuid.New()
	}
	for i := range export.Assets {
		if export.Assets[i].ID == uuid.Nil {
			export.Assets[i].ID = uuid.New()
		}
		export.Assets[i].ExportID = export.ID
	}
	return r.db.WithContext(ctx).Create(export).Error
}

func (r *repository) FindFreshExport(ctx context.Context, kitID uuid.UUID, kind enums.ExportKind, since time.Time) (*models.Export, error) {
	var export models.Export
	err := r.db.WithContext(ctx).
		Preload("Assets").
		Where("kit_id = ? AND kind = ? AND created_at > ?", kitID, kind, since).
		Order("created_at DESC").
		First(&export).Error
	if err != nil {
		return nil, err
	}
	return &export, nil
}

func (r *repository) ListExportsOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Export, error) {
	if limit <= 0 {
		limit = 100
	}
	var exports []models.Export
	err := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&exports).Error
	if err != nil {
		return nil, err
	}
	return exports, nil
}

func (r *repository) DeleteExport(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("export_id = ?", id).Delete(&models.ExportAsset{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Export{}).Error
}

func (r *repository) CreateJob(ctx context.Context, job *models.ExportJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *repository) FindJob(ctx context.Context, id uuid.UUID) (*models.ExportJob, error) {
	var job models.ExportJob
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repository) ClaimJob(ctx context.Context, id uuid.UUID, startedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ExportJob{}).
		Where("id = ? AND status = ?", id, enums.ExportJobStatusQueued).
		Updates(map[string]any{
			"status":     enums.ExportJobStatusProcessing,
			"started_at": startedAt,
			"progress":   10,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int) error {
	return r.db.WithContext(ctx).
		Model(&models.ExportJob{}).
		Where("id = ? AND status = ?", id, enums.ExportJobStatusProcessing).
		UpdateColumn("progress", progress).Error
}

func (r *repository) CompleteJob(ctx context.Context, id uuid.UUID, storageKey string, finishedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ExportJob{}).
		Where("id = ? AND status = ?", id, enums.ExportJobStatusProcessing).
		Updates(map[string]any{
			"status":      enums.ExportJobStatusCompleted,
			"storage_key": storageKey,
			"progress":    100,
			"finished_at": finishedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FailJobFrom(ctx context.Context, id uuid.UUID, expected enums.ExportJobStatus, message string, finishedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ExportJob{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]any{
			"status":      enums.ExportJobStatusFailed,
			"error":       message,
			"finished_at": finishedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListStuckJobs(ctx context.Context, processingBefore, queuedBefore time.Time, limit int) ([]models.ExportJob, error) {
	if limit <= 0 {
		limit = 100
	}
	var jobs []models.ExportJob
	err := r.db.WithContext(ctx).
		Where("(status = ? AND started_at < ?) OR (status = ? AND created_at < ?)",
			enums.ExportJobStatusProcessing, processingBefore,
			enums.ExportJobStatusQueued, queuedBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
