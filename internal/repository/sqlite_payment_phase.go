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

// SQLitePaymentPhaseRepo implements PaymentPhaseRepo.
type SQLitePaymentPhaseRepo struct {
	db db.DBTX
}

func NewSQLitePaymentPhaseRepo(conn db.DBTX) *SQLitePaymentPhaseRepo {
	return &SQLitePaymentPhaseRepo{db: conn}
}

const phaseColumns = `id, task_id, phase_name, due_date, payment_date, phase_amount, status,
	invoice_number, created_by, updated_by, created_at, updated_at`

func (r *SQLitePaymentPhaseRepo) Create(ctx context.Context, p *domain.PaymentPhase) error {
	query := `INSERT INTO payment_phases (` + phaseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.TaskID,
		p.Name,
		p.DueDate.Format(dateLayout),
		nullableTimeToString(p.PaymentDate, dateLayout),
		p.Amount,
		string(p.Status),
		p.InvoiceNumber,
		p.CreatedBy,
		p.UpdatedBy,
		formatTimestamp(p.CreatedAt),
		formatTimestamp(p.UpdatedAt),
	)
	if err != nil {
		return writeErr("inserting payment phase", err)
	}
	return nil
}

func (r *SQLitePaymentPhaseRepo) GetByID(ctx context.Context, id string) (*domain.PaymentPhase, error) {
	query := `SELECT ` + phaseColumns + ` FROM payment_phases WHERE id = ?`
	p, err := scanPhase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment phase %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *SQLitePaymentPhaseRepo) ListByTask(ctx context.Context, taskID string) ([]domain.PaymentPhase, error) {
	query := `SELECT ` + phaseColumns + ` FROM payment_phases WHERE task_id = ?
		ORDER BY due_date, created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing payment phases: %w", err)
	}
	defer rows.Close()

	var phases []domain.PaymentPhase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment phases: %w", err)
	}
	return phases, nil
}

// Update writes the full phase payload. The invoice number is not touched;
// it changes only through SetInvoiceNumber.
func (r *SQLitePaymentPhaseRepo) Update(ctx context.Context, p *domain.PaymentPhase) error {
	query := `UPDATE payment_phases SET phase_name = ?, due_date = ?, payment_date = ?,
		phase_amount = ?, status = ?, updated_by = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Name,
		p.DueDate.Format(dateLayout),
		nullableTimeToString(p.PaymentDate, dateLayout),
		p.Amount,
		string(p.Status),
		p.UpdatedBy,
		formatTimestamp(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return writeErr("updating payment phase", err)
	}
	return requireAffected(res, "payment phase", p.ID)
}

// SetInvoiceNumber assigns number to a phase that has none yet.
// A phase that already carries a number, or a number already used elsewhere,
// yields domain.ErrConflict.
func (r *SQLitePaymentPhaseRepo) SetInvoiceNumber(ctx context.Context, id, number string) error {
	query := `UPDATE payment_phases SET invoice_number = ?, updated_at = ?
		WHERE id = ? AND invoice_number = ''`
	res, err := r.db.ExecContext(ctx, query, number, formatTimestamp(time.Now()), id)
	if err != nil {
		return writeErr("recording invoice number", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("payment phase %s already has invoice number %s: %w", id, existing.InvoiceNumber, domain.ErrConflict)
}

func scanPhase(row scanner) (domain.PaymentPhase, error) {
	var p domain.PaymentPhase
	var dueDateStr, statusStr, createdAtStr, updatedAtStr string
	var paymentDateStr sql.NullString

	err := row.Scan(
		&p.ID, &p.TaskID, &p.Name, &dueDateStr, &paymentDateStr, &p.Amount, &statusStr,
		&p.InvoiceNumber, &p.CreatedBy, &p.UpdatedBy, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scanning payment phase: %w", err)
	}

	p.Status = domain.NormalizePhaseStatus(statusStr)
	p.DueDate, err = time.Parse(dateLayout, dueDateStr)
	if err != nil {
		return p, fmt.Errorf("parsing due_date: %w", err)
	}
	p.PaymentDate = parseNullableTime(paymentDateStr, dateLayout)
	p.CreatedAt, p.UpdatedAt, err = parseTimestamps(createdAtStr, updatedAtStr)
	if err != nil {
		return p, err
	}
	return p, nil
}
