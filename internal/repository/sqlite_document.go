package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/casework/internal/db"
	"github.com/alexanderramin/casework/internal/domain"
)

// SQLiteDocumentRepo implements DocumentRepo. File content lives in the
// documents row next to its metadata.
type SQLiteDocumentRepo struct {
	db db.DBTX
}

func NewSQLiteDocumentRepo(conn db.DBTX) *SQLiteDocumentRepo {
	return &SQLiteDocumentRepo{db: conn}
}

func (r *SQLiteDocumentRepo) Create(ctx context.Context, d *domain.Document, content []byte) error {
	query := `INSERT INTO documents (id, task_id, category_id, label, file_name, content_type,
		size_bytes, content, visible, uploaded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.TaskID,
		d.CategoryID,
		d.Label,
		d.FileName,
		d.ContentType,
		d.SizeBytes,
		content,
		boolToInt(d.Visible),
		d.UploadedBy,
		formatTimestamp(d.CreatedAt),
	)
	if err != nil {
		return writeErr("inserting document", err)
	}
	return nil
}

func (r *SQLiteDocumentRepo) ListByTask(ctx context.Context, taskID string) ([]domain.Document, error) {
	query := `SELECT id, task_id, category_id, label, file_name, content_type, size_bytes,
		visible, uploaded_by, created_at
		FROM documents WHERE task_id = ? ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		var visible int
		var createdAtStr string
		if err := rows.Scan(
			&d.ID, &d.TaskID, &d.CategoryID, &d.Label, &d.FileName, &d.ContentType,
			&d.SizeBytes, &visible, &d.UploadedBy, &createdAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Visible = intToBool(visible)
		d.CreatedAt, _, err = parseTimestamps(createdAtStr, "")
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func (r *SQLiteDocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return requireAffected(res, "document", id)
}
