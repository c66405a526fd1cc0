package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/casework/internal/db"
	"github.com/alexanderramin/casework/internal/domain"
)

// SQLiteCategoryRepo implements CategoryRepo. Ids are assigned from 1 upward;
// 0 remains the uncategorized placeholder and never has a row.
type SQLiteCategoryRepo struct {
	db db.DBTX
}

func NewSQLiteCategoryRepo(conn db.DBTX) *SQLiteCategoryRepo {
	return &SQLiteCategoryRepo{db: conn}
}

func (r *SQLiteCategoryRepo) ListByCaseType(ctx context.Context, caseTypeID string) ([]domain.Category, error) {
	query := `SELECT id, case_type_id, label, created_at FROM document_categories
		WHERE case_type_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, caseTypeID)
	if err != nil {
		return nil, fmt.Errorf("listing document categories: %w", err)
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		var createdAtStr string
		if err := rows.Scan(&c.ID, &c.CaseTypeID, &c.Label, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning document category: %w", err)
		}
		c.CreatedAt, _, err = parseTimestamps(createdAtStr, "")
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document categories: %w", err)
	}
	return cats, nil
}

// Create returns the id for label under caseTypeID, inserting it when missing.
func (r *SQLiteCategoryRepo) Create(ctx context.Context, caseTypeID, label string) (int64, error) {
	insert := `INSERT INTO document_categories (case_type_id, label, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(case_type_id, label) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, caseTypeID, label, formatTimestamp(time.Now())); err != nil {
		return 0, writeErr("inserting document category", err)
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM document_categories WHERE case_type_id = ? AND label = ?`,
		caseTypeID, label,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("document category %q vanished after insert", label)
		}
		return 0, fmt.Errorf("reading document category id: %w", err)
	}
	return id, nil
}
