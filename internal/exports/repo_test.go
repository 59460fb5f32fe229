package exports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
)

func setupExportTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{`
CREATE TABLE IF NOT EXISTS exports (
  id TEXT PRIMARY KEY,
  kit_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  storage_key TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS export_assets (
  id TEXT PRIMARY KEY,
  export_id TEXT NOT NULL,
  section_key TEXT NOT NULL,
  storage_key TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  fallback INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS export_jobs (
  id TEXT PRIMARY KEY,
  kit_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'queued',
  storage_key TEXT,
  error TEXT,
  progress INTEGER NOT NULL DEFAULT 0,
  started_at DATETIME,
  finished_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS kits (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL,
  created_by TEXT NOT NULL,
  title TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  intake TEXT,
  generated_content TEXT,
  edited_content TEXT,
  regen_counts TEXT,
  requires_review INTEGER NOT NULL DEFAULT 0,
  qa_notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  kit_id TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  plan_tier TEXT NOT NULL DEFAULT 'standard',
  checkout_session_id TEXT,
  paid_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS audit_logs (
  id TEXT PRIMARY KEY,
  order_id TEXT,
  kit_id TEXT,
  actor_id TEXT,
  action TEXT NOT NULL,
  before TEXT,
  after TEXT,
  created_at DATETIME
);`}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM export_assets")
		db.Exec("DELETE FROM exports")
		db.Exec("DELETE FROM export_jobs")
		db.Exec("DELETE FROM audit_logs")
		db.Exec("DELETE FROM orders")
		db.Exec("DELETE FROM kits")
	})
	return db
}

func seedExport(t *testing.T, repo Repository, kitID uuid.UUID, kind enums.ExportKind, age time.Duration) *models.Export {
	t.Helper()

	export := &models.Export{
		KitID:      kitID,
		Kind:       kind,
		StorageKey: "exports/" + kitID.String() + "/test.pdf",
		SizeBytes:  128,
	}
	require.NoError(t, repo.CreateExport(context.Background(), export))
	if age > 0 {
		createdAt := time.Now().UTC().Add(-age)
		require.NoError(t, repo.(*repository).db.
			Table("exports").Where("id = ?", export.ID).
			UpdateColumn("created_at", createdAt).Error)
	}
	return export
}

func seedJob(t *testing.T, repo Repository, status enums.ExportJobStatus) *models.ExportJob {
	t.Helper()

	job := &models.ExportJob{
		KitID:  uuid.New(),
		Kind:   enums.ExportKindCombined,
		Status: status,
	}
	require.NoError(t, repo.CreateJob(context.Background(), job))
	return job
}

func TestCreateExportMintsIdentifiers(t *testing.T) {
	repo := NewRepository(setupExportTestDB(t))
	ctx := context.Background()

	export := &models.Export{
		KitID:      uuid.New(),
		Kind:       enums.ExportKindArchive,
		StorageKey: "exports/x.zip",
		SizeBytes:  2048,
		Assets: []models.ExportAsset{
			{SectionKey: enums.SectionScorecard, StorageKey: "01_scorecard.pdf", SizeBytes: 512},
			{SectionKey: enums.SectionJobPost, StorageKey: "02_job_post.pdf", SizeBytes: 512, Fallback: true},
		},
	}
	require.NoError(t, repo.CreateExport(ctx, export))
	assert.NotEqual(t, uuid.Nil, export.ID)

	found, err := repo.FindFreshExport(ctx, export.KitID, enums.ExportKindArchive, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, found.Assets, 2)
	for _, asset := range found.Assets {
		assert.Equal(t, export.ID, asset.ExportID)
		assert.NotEqual(t, uuid.Nil, asset.ID)
	}
}

func TestFindFreshExportHonorsWindow(t *testing.T) {
	repo := NewRepository(setupExportTestDB(t))
	ctx := context.Background()
	kitID := uuid.New()

	seedExport(t, repo, kitID, enums.ExportKindCombined, 30*time.Hour)

	_, err := repo.FindFreshExport(ctx, kitID, enums.ExportKindCombined, time.Now().UTC().Add(-24*time.Hour))
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	fresh := seedExport(t, repo, kitID, enums.ExportKindCombined, time.Hour)
	found, err := repo.FindFreshExport(ctx, kitID, enums.ExportKindCombined, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, found.ID)
}

func TestFindFreshExportSeparatesKinds(t *testing.T) {
	repo := NewRepository(setupExportTestDB(t))
	ctx := context.Background()
	kitID := uuid.New()

	seedExport(t, repo, kitID, enums.ExportKindCombined, time.Hour)

	_, err := repo.FindFreshExport(ctx, kitID, enums.ExportKindArchive, time.Now().UTC().Add(-24*time.Hour))
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestClaimJobIsSingleWinner(t *testing.T) {
	repo := NewRepository(setupExportTestDB(t))
	ctx := context.Background()
	job := seedJob(t, repo, enums.ExportJobStatusQueued)

	claimed, err := repo.ClaimJob(ctx, job.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, claimed)

	again, err := repo.ClaimJob(ctx, job.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, again)

	stored, err := repo.FindJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ExportJobStatusProcessing, stored.Status)
	assert.Equal(t, 10, stored.Progress)
	assert.NotNil(t, stored.StartedAt)
}

func TestCompleteJobRequiresProcessing(t *testing.T) {
	repo := NewRepository(setupExportTestDB(t))
	ctx := context.Background()
	job := seedJob(t, repo, enums.ExportJobStatusQueued)

	done, err := repo.CompleteJob(ctx, job.ID, "exports/a.pdf", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, done, "a queued job must be claimed before completion")

	_, err = repo.ClaimJob(ctx, job.ID, time.Now().UTC())
	require.NoError(t, err)

	done, err = repo.CompleteJob(ctx, job.ID, "exports/a.pdf", time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, done)

	stored, err := repo.FindJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ExportJobStatusCompleted, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	require.NotNil(t, stored.StorageKey)
	assert.Equal(t, "exports/a.pdf", *stored.StorageKey)
	assert.NotNil(t, stored.FinishedAt)
}

func TestFailJobFromGuardsExpectedStatus(t *testing.T) {
	repo := NewRepository(setupExportTestDB(t))
	ctx := context.Background()
	job := seedJob(t, repo, enums.ExportJobStatusQueued)

	flipped, err := repo.FailJobFrom(ctx, job.ID, enums.ExportJobStatusProcessing, "renderer down", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, flipped)

	flipped, err = repo.FailJobFrom(ctx, job.ID, enums.ExportJobStatusQueued, "export timed out", time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, flipped)

	stored, err := repo.FindJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ExportJobStatusFailed, stored.Status)
	require.NotNil(t, stored.Error)
	assert.Equal(t, "export timed out", *stored.Error)
}

func TestUpdateJobProgressOnlyWhileProcessing(t *testing.T) {
	repo := NewRepository(setupExportTestDB(t))
	ctx := context.Background()
	job := seedJob(t, repo, enums.ExportJobStatusQueued)

	require.NoError(t, repo.UpdateJobProgress(ctx, job.ID, 60))
	stored, err := repo.FindJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Progress, "progress must not move before the claim")

	_, err = repo.ClaimJob(ctx, job.ID, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.UpdateJobProgress(ctx, job.ID, 60))

	stored, err = repo.FindJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, stored.Progress)
}

func TestListStuckJobs(t *testing.T) {
	db := setupExportTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	stale := seedJob(t, repo, enums.ExportJobStatusQueued)
	_, err := repo.ClaimJob(ctx, stale.ID, now.Add(-20*time.Minute))
	require.NoError(t, err)

	abandoned := seedJob(t, repo, enums.ExportJobStatusQueued)
	require.NoError(t, db.Table("export_jobs").Where("id = ?", abandoned.ID).
		UpdateColumn("created_at", now.Add(-time.Hour)).Error)

	healthy := seedJob(t, repo, enums.ExportJobStatusQueued)
	_, err = repo.ClaimJob(ctx, healthy.ID, now)
	require.NoError(t, err)
	fresh := seedJob(t, repo, enums.ExportJobStatusQueued)

	stuck, err := repo.ListStuckJobs(ctx, now.Add(-10*time.Minute), now.Add(-30*time.Minute), 10)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(stuck))
	for _, job := range stuck {
		ids = append(ids, job.ID)
	}
	assert.Contains(t, ids, stale.ID)
	assert.Contains(t, ids, abandoned.ID)
	assert.NotContains(t, ids, healthy.ID)
	assert.NotContains(t, ids, fresh.ID)
}

func TestListAndDeleteOldExports(t *testing.T) {
	repo := NewRepository(setupExportTestDB(t))
	ctx := context.Background()
	kitID := uuid.New()

	old := seedExport(t, repo, kitID, enums.ExportKindCombined, 10*24*time.Hour)
	seedExport(t, repo, kitID, enums.ExportKindCombined, time.Hour)

	expired, err := repo.ListExportsOlderThan(ctx, time.Now().UTC().Add(-8*24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, old.ID, expired[0].ID)

	require.NoError(t, repo.DeleteExport(ctx, old.ID))
	expired, err = repo.ListExportsOlderThan(ctx, time.Now().UTC().Add(-8*24*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, expired)
}
