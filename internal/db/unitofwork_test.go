package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alexanderramin/casework/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openUoW(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`INSERT INTO customers (id, name, created_at, updated_at) VALUES ('seed', 'Seed', 'x', 'x')`)
	require.NoError(t, err)

	return database, db.NewSQLiteUnitOfWork(database)
}

func customerName(t *testing.T, database *sql.DB, id string) (string, bool) {
	t.Helper()
	var name string
	err := database.QueryRow(`SELECT name FROM customers WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	require.NoError(t, err)
	return name, true
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	database, uow := openUoW(t)

	err := uow.WithinTx(context.Background(), "test", func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO customers (id, name, created_at, updated_at) VALUES ('c1', 'Ada', 'x', 'x')`)
		return err
	})
	require.NoError(t, err)

	name, found := customerName(t, database, "c1")
	assert.True(t, found)
	assert.Equal(t, "Ada", name)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	database, uow := openUoW(t)
	deliberate := errors.New("deliberate failure")

	err := uow.WithinTx(context.Background(), "test", func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `UPDATE customers SET name = 'Changed' WHERE id = 'seed'`); err != nil {
			return err
		}
		return deliberate
	})
	require.ErrorIs(t, err, deliberate)

	name, _ := customerName(t, database, "seed")
	assert.Equal(t, "Seed", name, "update should be rolled back")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := openUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), "test", func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO customers (id, name, created_at, updated_at) VALUES ('c3', 'Bo', 'x', 'x')`)
			panic("boom")
		})
	})

	_, found := customerName(t, database, "c3")
	assert.False(t, found, "row should not exist after panic rollback")
}

func TestWithinTx_SerializesWriters(t *testing.T) {
	database, uow := openUoW(t)
	ctx := context.Background()

	done := make(chan error, 2)
	for _, id := range []string{"w1", "w2"} {
		go func() {
			done <- uow.WithinTx(ctx, "insert "+id, func(ctx context.Context, tx db.DBTX) error {
				_, err := tx.ExecContext(ctx, `INSERT INTO customers (id, name, created_at, updated_at) VALUES (?, 'W', 'x', 'x')`, id)
				return err
			})
		}()
	}
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM customers`).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestWithinTx_CommitErrorNamesOperation(t *testing.T) {
	database, uow := openUoW(t)
	require.NoError(t, database.Close())

	err := uow.WithinTx(context.Background(), "record invoice", func(context.Context, db.DBTX) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record invoice")
}
