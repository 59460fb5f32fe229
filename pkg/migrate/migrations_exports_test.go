package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hirekitlabs/hirekit-backend/pkg/migrate"
)

func TestExportsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_exports.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no exports migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE export_kind AS ENUM ('combined', 'archive')",
		"CREATE TABLE IF NOT EXISTS exports",
		"CREATE TABLE IF NOT EXISTS export_assets",
		"FOREIGN KEY (kit_id) REFERENCES kits(id) ON DELETE CASCADE",
		"FOREIGN KEY (export_id) REFERENCES exports(id) ON DELETE CASCADE",
		"CHECK (size_bytes >= 0)",
		"CREATE INDEX ix_exports_kit_kind ON exports (kit_id, kind, created_at DESC)",
		"DROP TABLE IF EXISTS export_assets",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestExportJobsMigrationContainsProgressBounds(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_export_jobs.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no export jobs migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE export_job_status AS ENUM ('queued', 'processing', 'completed', 'failed')",
		"CHECK (progress >= 0 AND progress <= 100)",
		"CREATE INDEX ix_export_jobs_status ON export_jobs (status, created_at)",
		"DROP TABLE IF EXISTS export_jobs",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirectoryValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations directory invalid: %v", err)
	}
}
