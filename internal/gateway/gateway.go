// Package gateway defines the remote operations the reconciliation engine
// consumes and provides an in-process SQLite implementation, an HTTP client
// for the REST API, and a client for the external invoice renderer.
package gateway

import (
	"context"

	"github.com/alexanderramin/casework/internal/domain"
)

// RecordSystem is the system of record holding tasks and their sub-resources.
type RecordSystem interface {
	// FetchTask returns the task with its phases, documents and customer.
	FetchTask(ctx context.Context, taskID string) (*domain.Task, error)
	SaveTask(ctx context.Context, t *domain.Task) error
	CreateTask(ctx context.Context, t *domain.Task) error
	UpsertCustomer(ctx context.Context, c *domain.Customer) error

	// CreatePaymentPhase stores p under taskID and sets p.ID on success.
	CreatePaymentPhase(ctx context.Context, taskID string, p *domain.PaymentPhase) error
	UpdatePaymentPhase(ctx context.Context, p *domain.PaymentPhase) error

	// FetchLatestInvoiceNumber reports the latest number issued in the
	// phase's scope, or false when none has been issued.
	FetchLatestInvoiceNumber(ctx context.Context, phaseID string) (string, bool, error)
	RecordInvoiceNumber(ctx context.Context, phaseID, number string) error

	FetchDocumentCategories(ctx context.Context, caseTypeID string) (map[string]int64, error)
	CreateDocumentCategory(ctx context.Context, caseTypeID, label string) (int64, error)
	UploadDocument(ctx context.Context, req domain.UploadRequest) (*domain.Document, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// InvoiceRenderer turns a validated invoice document into PDF bytes.
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, doc domain.InvoiceDocument) ([]byte, error)
}
