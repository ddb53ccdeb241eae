package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/printhubhq/printhub-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestInitSchemaMigrationContainsCoreTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE order_status AS ENUM",
		"'order-request-received'",
		"'order-completed'",
		"CREATE TABLE orders",
		"CREATE TABLE payments",
		"CREATE UNIQUE INDEX idx_payments_transaction_id ON payments (transaction_id)",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationEnforcesUniqueAggregateEvents(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_outbox_tables.sql"))
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

	if !strings.Contains(content, "ux_outbox_events_event_aggregate") {
		t.Errorf("outbox migration missing dedupe index")
	}
	if !strings.Contains(content, "CREATE TABLE outbox_dlq") {
		t.Errorf("outbox migration missing dlq table")
	}
}
