package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// UnitOfWork groups the writes of one record-system operation. op names the
// operation in wrapped errors; fn receives a transaction-backed DBTX.
type UnitOfWork interface {
	WithinTx(ctx context.Context, op string, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLiteUnitOfWork serializes write transactions within the process. SQLite
// admits a single writer, and a deferred transaction that reads before it
// writes (latest invoice number, then the next one) would otherwise fail
// with SQLITE_BUSY when two API requests overlap.
type SQLiteUnitOfWork struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// WithinTx commits when fn returns nil and rolls back on error or panic.
func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, op string, fn func(ctx context.Context, tx DBTX) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	committed = true
	return nil
}
