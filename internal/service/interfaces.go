package service

import (
	"context"

	"github.com/alexanderramin/casework/internal/domain"
)

// PhaseWriter persists payment phases.
type PhaseWriter interface {
	CreatePaymentPhase(ctx context.Context, taskID string, p *domain.PaymentPhase) error
	UpdatePaymentPhase(ctx context.Context, p *domain.PaymentPhase) error
}

// InvoiceSequence exposes the latest issued invoice number and records new ones.
type InvoiceSequence interface {
	FetchLatestInvoiceNumber(ctx context.Context, phaseID string) (string, bool, error)
	RecordInvoiceNumber(ctx context.Context, phaseID, number string) error
}

// CategoryCatalog lists and creates document categories per case type.
type CategoryCatalog interface {
	FetchDocumentCategories(ctx context.Context, caseTypeID string) (map[string]int64, error)
	CreateDocumentCategory(ctx context.Context, caseTypeID, label string) (int64, error)
}

// DocumentStore accepts uploads and deletions.
type DocumentStore interface {
	UploadDocument(ctx context.Context, req domain.UploadRequest) (*domain.Document, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// RefreshFunc re-fetches the task from the system of record.
type RefreshFunc func(ctx context.Context) error
