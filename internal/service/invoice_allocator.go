package service

import (
	"context"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
)

// DefaultInvoicePrefix is the literal prefix of synthesized invoice numbers.
const DefaultInvoicePrefix = "ECSI"

// InvoiceAllocator derives a phase's invoice number from the latest issued
// one and records it. It keeps no state of its own, so two sessions allocating
// in the same scope can race; the system of record is expected to reject the
// loser with domain.ErrConflict.
type InvoiceAllocator struct {
	seq      InvoiceSequence
	prefix   string
	now      func() time.Time
	observer UseCaseObserver
}

// AllocatorOption configures an InvoiceAllocator.
type AllocatorOption func(*InvoiceAllocator)

// WithClock overrides the time source used for the year of first numbers.
func WithClock(now func() time.Time) AllocatorOption {
	return func(a *InvoiceAllocator) {
		a.now = now
	}
}

func WithAllocatorObserver(obs UseCaseObserver) AllocatorOption {
	return func(a *InvoiceAllocator) {
		a.observer = useCaseObserverOrNoop([]UseCaseObserver{obs})
	}
}

func NewInvoiceAllocator(seq InvoiceSequence, prefix string, opts ...AllocatorOption) *InvoiceAllocator {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	a := &InvoiceAllocator{
		seq:      seq,
		prefix:   prefix,
		now:      time.Now,
		observer: NoopUseCaseObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NextInvoiceNumber returns the number following latest. When latest is
// empty or has no trailing digits, the first number of the current year is
// returned instead.
func NextInvoiceNumber(latest, prefix string, now time.Time) string {
	if n, ok := domain.ParseInvoiceNumber(latest); ok {
		return n.Next().String()
	}
	return domain.FirstInvoiceNumber(prefix, now).String()
}

// Allocate returns phase's invoice number, allocating and recording one when
// it has none. An already-issued number is returned unchanged without any
// remote call. On success phase.InvoiceNumber is set; on failure it is not
// touched and the error is a *domain.OpError of kind
// domain.ErrInvoiceAllocationFailed.
func (a *InvoiceAllocator) Allocate(ctx context.Context, phase *domain.PaymentPhase) (number string, err error) {
	if phase.HasInvoiceNumber() {
		return phase.InvoiceNumber, nil
	}
	if !phase.IsPersisted() {
		return "", domain.NewValidationError("phase", "persisted", "phase %q must be saved before an invoice number is allocated", phase.Name)
	}

	fields := map[string]any{"phase_id": phase.ID}
	defer observe(ctx, a.observer, UseCaseInvoiceAllocate, time.Now(), fields, &err)

	latest, _, err := a.seq.FetchLatestInvoiceNumber(ctx, phase.ID)
	if err != nil {
		return "", domain.NewOpError(domain.ErrInvoiceAllocationFailed, "fetch_latest_invoice_number", phase.ID, err)
	}

	next := NextInvoiceNumber(latest, a.prefix, a.now())
	if err := a.seq.RecordInvoiceNumber(ctx, phase.ID, next); err != nil {
		return "", domain.NewOpError(domain.ErrInvoiceAllocationFailed, "record_invoice_number", phase.ID, err)
	}

	fields["invoice_number"] = next
	phase.InvoiceNumber = next
	return next, nil
}
