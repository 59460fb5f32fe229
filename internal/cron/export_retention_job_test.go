package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/pkg/db/models"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
)

func TestExportRetentionDeletesObjectThenRow(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	stale := models.Export{ID: uuid.New(), StorageKey: "exports/kit/combined/old.pdf"}
	repo := &fakeExportRetentionRepo{batches: [][]models.Export{{stale}}}
	gcs := &fakeGCS{}
	job := newRetentionJob(t, repo, gcs, 8*24*time.Hour)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !repo.lastCutoff.Equal(now.Add(-8 * 24 * time.Hour)) {
		t.Fatalf("cutoff mismatch: %s", repo.lastCutoff)
	}
	if len(gcs.deleted) != 1 || gcs.deleted[0] != "cdn-bucket/"+stale.StorageKey {
		t.Fatalf("unexpected gcs deletes: %v", gcs.deleted)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != stale.ID {
		t.Fatalf("unexpected row deletes: %v", repo.deleted)
	}
}

func TestExportRetentionKeepsRowWhenObjectDeleteFails(t *testing.T) {
	stale := models.Export{ID: uuid.New(), StorageKey: "exports/kit/combined/old.pdf"}
	repo := &fakeExportRetentionRepo{batches: [][]models.Export{{stale}}}
	gcs := &fakeGCS{err: errors.New("gcs down")}
	job := newRetentionJob(t, repo, gcs, time.Hour)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error to surface")
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("row must survive a failed object delete, deleted %v", repo.deleted)
	}
}

func TestExportRetentionDrainsBatches(t *testing.T) {
	first := models.Export{ID: uuid.New(), StorageKey: "exports/a.pdf"}
	second := models.Export{ID: uuid.New(), StorageKey: "exports/b.zip"}
	repo := &fakeExportRetentionRepo{batches: [][]models.Export{{first}, {second}}}
	gcs := &fakeGCS{}
	job := newRetentionJob(t, repo, gcs, time.Hour)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(repo.deleted) != 2 {
		t.Fatalf("expected both batches drained, deleted %d", len(repo.deleted))
	}
	if repo.listCalls != 3 {
		t.Fatalf("expected a final empty list call, got %d", repo.listCalls)
	}
}

func TestExportRetentionStopsWhenNothingProgresses(t *testing.T) {
	stuck := models.Export{ID: uuid.New(), StorageKey: "exports/stuck.pdf"}
	repo := &fakeExportRetentionRepo{repeat: []models.Export{stuck}}
	gcs := &fakeGCS{err: errors.New("gcs down")}
	job := newRetentionJob(t, repo, gcs, time.Hour)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected single list before bailing, got %d", repo.listCalls)
	}
}

func newRetentionJob(t *testing.T, repo *fakeExportRetentionRepo, gcs *fakeGCS, maxAge time.Duration) *exportRetentionJob {
	t.Helper()
	jobIface, err := NewExportRetentionJob(ExportRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Repository: repo,
		Storage:    gcs,
		Bucket:     "cdn-bucket",
		MaxAge:     maxAge,
	})
	if err != nil {
		t.Fatalf("NewExportRetentionJob: %v", err)
	}
	job, ok := jobIface.(*exportRetentionJob)
	if !ok {
		t.Fatalf("expected exportRetentionJob, got %T", jobIface)
	}
	return job
}

type fakeExportRetentionRepo struct {
	batches    [][]models.Export
	repeat     []models.Export
	deleted    []uuid.UUID
	listCalls  int
	lastCutoff time.Time
}

func (f *fakeExportRetentionRepo) ListExportsOlderThan(_ context.Context, cutoff time.Time, _ int) ([]models.Export, error) {
	f.listCalls++
	f.lastCutoff = cutoff
	if f.repeat != nil {
		return f.repeat, nil
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeExportRetentionRepo) DeleteExport(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeGCS struct {
	deleted []string
	err     error
}

func (f *fakeGCS) DeleteObject(_ context.Context, bucket, object string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, bucket+"/"+object)
	return nil
}
