package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no orders migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE order_status AS ENUM ('draft', 'awaiting_payment', 'paid', 'qa_pending', 'ready', 'delivered')",
		"CREATE TYPE plan_tier AS ENUM ('standard', 'premium')",
		"CREATE TABLE IF NOT EXISTS orders",
		"FOREIGN KEY (kit_id) REFERENCES kits(id) ON DELETE CASCADE",
		"CHECK (amount_cents >= 0)",
		"CREATE UNIQUE INDEX ux_orders_checkout_session_id ON orders (checkout_session_id) WHERE checkout_session_id IS NOT NULL",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationGuardsRedelivery(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_outbox_events.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE outbox_status AS ENUM ('pending', 'published', 'failed')",
		"CREATE UNIQUE INDEX ux_outbox_events_event_aggregate",
		"CHECK (attempt_count >= 0)",
		"WHERE status <> 'published'",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
