package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/casework/internal/db"
	"github.com/alexanderramin/casework/internal/domain"
	"github.com/alexanderramin/casework/internal/repository"
	"github.com/google/uuid"
)

// Local is an in-process RecordSystem backed by the SQLite repositories.
// All phases share one invoice sequence scope.
type Local struct {
	tasks      repository.TaskRepo
	customers  repository.CustomerRepo
	phases     repository.PaymentPhaseRepo
	categories repository.CategoryRepo
	documents  repository.DocumentRepo
	sequences  repository.InvoiceSequenceRepo
	uow        db.UnitOfWork
	scope      string
	now        func() time.Time
}

var _ RecordSystem = (*Local)(nil)

// NewLocal builds a Local over conn. Multi-row writes go through uow.
func NewLocal(conn db.DBTX, uow db.UnitOfWork, scope string) *Local {
	if scope == "" {
		scope = "default"
	}
	return &Local{
		tasks:      repository.NewSQLiteTaskRepo(conn),
		customers:  repository.NewSQLiteCustomerRepo(conn),
		phases:     repository.NewSQLitePaymentPhaseRepo(conn),
		categories: repository.NewSQLiteCategoryRepo(conn),
		documents:  repository.NewSQLiteDocumentRepo(conn),
		sequences:  repository.NewSQLiteInvoiceSequenceRepo(conn),
		uow:        uow,
		scope:      scope,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (l *Local) FetchTask(ctx context.Context, taskID string) (*domain.Task, error) {
	t, err := l.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Phases, err = l.phases.ListByTask(ctx, taskID); err != nil {
		return nil, err
	}
	if t.Documents, err = l.documents.ListByTask(ctx, taskID); err != nil {
		return nil, err
	}
	if t.CustomerID != "" {
		c, err := l.customers.GetByID(ctx, t.CustomerID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		t.Customer = c
	}
	return t, nil
}

func (l *Local) CreateTask(ctx context.Context, t *domain.Task) error {
	if t.Status == "" {
		t.Status = domain.TaskOpen
	}
	if err := t.ValidateFields(); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := l.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	return l.tasks.Create(ctx, t)
}

func (l *Local) SaveTask(ctx context.Context, t *domain.Task) error {
	if t.Status == "" {
		t.Status = domain.TaskOpen
	}
	if err := t.ValidateFields(); err != nil {
		return err
	}
	t.UpdatedAt = l.now()
	return l.tasks.Update(ctx, t)
}

func (l *Local) UpsertCustomer(ctx context.Context, c *domain.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return domain.NewValidationError("name", "required", "customer name is required")
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return l.customers.Upsert(ctx, c)
}

func (l *Local) CreatePaymentPhase(ctx context.Context, taskID string, p *domain.PaymentPhase) error {
	if err := domain.FormFromPhase(*p).Validate(); err != nil {
		return err
	}
	if _, err := l.tasks.GetByID(ctx, taskID); err != nil {
		return err
	}

	row := *p
	row.ID = uuid.New().String()
	row.TaskID = taskID
	row.Name = strings.TrimSpace(row.Name)
	row.Status = domain.NormalizePhaseStatus(string(row.Status))
	row.InvoiceNumber = ""
	row.UpdatedBy = row.CreatedBy
	now := l.now()
	row.CreatedAt = now
	row.UpdatedAt = now
	if err := l.phases.Create(ctx, &row); err != nil {
		return err
	}
	*p = row
	return nil
}

func (l *Local) UpdatePaymentPhase(ctx context.Context, p *domain.PaymentPhase) error {
	if err := domain.FormFromPhase(*p).Validate(); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Status = domain.NormalizePhaseStatus(string(p.Status))
	p.UpdatedAt = l.now()
	return l.phases.Update(ctx, p)
}

func (l *Local) FetchLatestInvoiceNumber(ctx context.Context, phaseID string) (string, bool, error) {
	if _, err := l.phases.GetByID(ctx, phaseID); err != nil {
		return "", false, err
	}
	return l.sequences.Latest(ctx, l.scope)
}

// RecordInvoiceNumber stores number on the phase and advances the scope's
// latest number in one transaction. Reassigning a phase's number or reusing
// another phase's number fails with domain.ErrConflict.
func (l *Local) RecordInvoiceNumber(ctx context.Context, phaseID, number string) error {
	if !domain.IsIssuedInvoiceNumber(number) {
		return domain.NewValidationError("invoice_number", "required", "invoice number is required")
	}
	return l.uow.WithinTx(ctx, "record invoice number", func(ctx context.Context, tx db.DBTX) error {
		txPhases := repository.NewSQLitePaymentPhaseRepo(tx)
		txSequences := repository.NewSQLiteInvoiceSequenceRepo(tx)

		if err := txPhases.SetInvoiceNumber(ctx, phaseID, number); err != nil {
			return err
		}
		return txSequences.Advance(ctx, l.scope, number)
	})
}

func (l *Local) FetchDocumentCategories(ctx context.Context, caseTypeID string) (map[string]int64, error) {
	cats, err := l.categories.ListByCaseType(ctx, caseTypeID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(cats))
	for _, c := range cats {
		out[c.Label] = c.ID
	}
	return out, nil
}

func (l *Local) CreateDocumentCategory(ctx context.Context, caseTypeID, label string) (int64, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, domain.NewValidationError("label", "required", "category label is required")
	}
	if strings.TrimSpace(caseTypeID) == "" {
		return 0, domain.NewValidationError("case_type_id", "required", "case type is required")
	}
	return l.categories.Create(ctx, caseTypeID, label)
}

func (l *Local) UploadDocument(ctx context.Context, req domain.UploadRequest) (*domain.Document, error) {
	if req.File == nil {
		return nil, domain.NewValidationError("file", "required", "a file is required")
	}
	if strings.TrimSpace(req.Label) == "" {
		return nil, domain.NewValidationError("label", "required", "document label is required")
	}
	if req.File.Size != int64(len(req.File.Data)) {
		return nil, domain.NewValidationError("file", "size_mismatch",
			"%s declares %d bytes but carries %d", req.File.Name, req.File.Size, len(req.File.Data))
	}
	if _, err := l.tasks.GetByID(ctx, req.TaskID); err != nil {
		return nil, err
	}

	d := &domain.Document{
		ID:          uuid.New().String(),
		TaskID:      req.TaskID,
		CategoryID:  req.CategoryID,
		Label:       req.Label,
		FileName:    req.File.Name,
		ContentType: req.File.ContentType,
		SizeBytes:   req.File.Size,
		Visible:     req.Visible,
		UploadedBy:  req.UploadedBy,
		CreatedAt:   l.now(),
	}
	if d.ContentType == "" {
		d.ContentType = "application/octet-stream"
	}
	if err := l.documents.Create(ctx, d, req.File.Data); err != nil {
		return nil, fmt.Errorf("storing document %q: %w", req.Label, err)
	}
	return d, nil
}

func (l *Local) DeleteDocument(ctx context.Context, documentID string) error {
	return l.documents.Delete(ctx, documentID)
}
