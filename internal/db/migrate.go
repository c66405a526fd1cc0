package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every schema statement. Statements are idempotent so the
// whole list runs on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form in SQLite.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillInvoiceSequences(db); err != nil {
		return fmt.Errorf("backfilling invoice sequences: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		phone      TEXT NOT NULL DEFAULT '',
		address    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		case_type_id   TEXT NOT NULL,
		customer_id    TEXT REFERENCES customers(id) ON DELETE SET NULL,
		service_amount REAL NOT NULL DEFAULT 0 CHECK(service_amount >= 0),
		status         TEXT NOT NULL DEFAULT 'open'
		               CHECK(status IN ('open','in_progress','completed','cancelled')),
		due_date       TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS payment_phases (
		id             TEXT PRIMARY KEY,
		task_id        TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		phase_name     TEXT NOT NULL,
		due_date       TEXT NOT NULL,
		payment_date   TEXT,
		phase_amount   REAL NOT NULL CHECK(phase_amount > 0),
		status         TEXT NOT NULL DEFAULT 'pending'
		               CHECK(status IN ('pending','paid')),
		invoice_number TEXT NOT NULL DEFAULT '',
		created_by     TEXT NOT NULL DEFAULT '',
		updated_by     TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_payment_phases_task ON payment_phases(task_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_phases_task_name
		ON payment_phases(task_id, phase_name COLLATE NOCASE)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_phases_invoice
		ON payment_phases(invoice_number) WHERE invoice_number != ''`,

	`CREATE TABLE IF NOT EXISTS invoice_sequences (
		scope      TEXT PRIMARY KEY,
		latest     TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS document_categories (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		case_type_id TEXT NOT NULL,
		label        TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		UNIQUE(case_type_id, label)
	)`,

	// category_id 0 is the uncategorized placeholder and has no row, so no FK.
	`CREATE TABLE IF NOT EXISTS documents (
		id           TEXT PRIMARY KEY,
		task_id      TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		category_id  INTEGER NOT NULL DEFAULT 0,
		label        TEXT NOT NULL,
		file_name    TEXT NOT NULL,
		content_type TEXT NOT NULL DEFAULT 'application/octet-stream',
		size_bytes   INTEGER NOT NULL CHECK(size_bytes >= 0),
		content      BLOB,
		uploaded_by  TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_documents_task ON documents(task_id)`,

	// Customer-facing visibility flag for uploaded documents.
	`ALTER TABLE documents ADD COLUMN visible INTEGER NOT NULL DEFAULT 1`,
}

// migrateBackfillInvoiceSequences seeds the default scope from the
// highest invoice number already stored on phases when no sequence row exists.
// Numbers of the same width sort lexically, so the longest-then-largest value wins.
func migrateBackfillInvoiceSequences(db *sql.DB) error {
	ctx := context.Background()

	query := `INSERT OR IGNORE INTO invoice_sequences (scope, latest, updated_at)
		SELECT 'default', invoice_number, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		FROM payment_phases
		WHERE invoice_number != ''
		ORDER BY length(invoice_number) DESC, invoice_number DESC
		LIMIT 1`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("seeding default invoice scope: %w", err)
	}
	return nil
}
