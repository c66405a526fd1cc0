package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/casework/internal/db"
)

// FailingUoW runs transactions against DB and makes the Nth write inside
// each transaction return Err, so rollback paths can be exercised.
// Writes are counted from 1 per transaction; reads are never intercepted.
type FailingUoW struct {
	DB     *sql.DB
	FailAt int
	Err    error

	// Writes is the number of writes attempted in the last transaction.
	Writes int
}

func (u *FailingUoW) WithinTx(ctx context.Context, op string, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}

	w := &failingTx{DBTX: tx, failAt: u.FailAt, err: u.Err}
	fnErr := fn(ctx, w)
	u.Writes = w.writes
	if fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failingTx struct {
	db.DBTX
	writes int
	failAt int
	err    error
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.writes++
	if f.writes == f.failAt {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
