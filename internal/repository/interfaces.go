package repository

import (
	"context"

	"github.com/alexanderramin/casework/internal/domain"
)

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
}

type CustomerRepo interface {
	Upsert(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type PaymentPhaseRepo interface {
	Create(ctx context.Context, p *domain.PaymentPhase) error
	GetByID(ctx context.Context, id string) (*domain.PaymentPhase, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.PaymentPhase, error)
	Update(ctx context.Context, p *domain.PaymentPhase) error
	SetInvoiceNumber(ctx context.Context, id, number string) error
}

type CategoryRepo interface {
	ListByCaseType(ctx context.Context, caseTypeID string) ([]domain.Category, error)
	Create(ctx context.Context, caseTypeID, label string) (int64, error)
}

type DocumentRepo interface {
	Create(ctx context.Context, d *domain.Document, content []byte) error
	ListByTask(ctx context.Context, taskID string) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// InvoiceSequenceRepo tracks the latest invoice number issued per scope.
type InvoiceSequenceRepo interface {
	Latest(ctx context.Context, scope string) (string, bool, error)
	Advance(ctx context.Context, scope, number string) error
}
