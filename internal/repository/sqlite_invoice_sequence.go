package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/casework/internal/db"
)

// SQLiteInvoiceSequenceRepo stores the latest issued invoice number per scope.
// It keeps the value verbatim; parsing and incrementing live in the allocator.
type SQLiteInvoiceSequenceRepo struct {
	db db.DBTX
}

func NewSQLiteInvoiceSequenceRepo(conn db.DBTX) *SQLiteInvoiceSequenceRepo {
	return &SQLiteInvoiceSequenceRepo{db: conn}
}

func (r *SQLiteInvoiceSequenceRepo) Latest(ctx context.Context, scope string) (string, bool, error) {
	var latest string
	err := r.db.QueryRowContext(ctx, `SELECT latest FROM invoice_sequences WHERE scope = ?`, scope).Scan(&latest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading latest invoice number for %s: %w", scope, err)
	}
	return latest, true, nil
}

func (r *SQLiteInvoiceSequenceRepo) Advance(ctx context.Context, scope, number string) error {
	query := `INSERT INTO invoice_sequences (scope, latest, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET latest = excluded.latest, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, scope, number, formatTimestamp(time.Now())); err != nil {
		return fmt.Errorf("advancing invoice sequence for %s: %w", scope, err)
	}
	return nil
}
