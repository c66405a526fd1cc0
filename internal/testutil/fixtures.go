package testutil

import (
	"time"

	"github.com/alexanderramin/casework/internal/domain"
	"github.com/google/uuid"
)

// Date returns midnight UTC on the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Task options
type TaskOption func(*domain.Task)

func WithServiceAmount(a float64) TaskOption {
	return func(t *domain.Task) {
		t.ServiceAmount = a
	}
}

func WithCaseType(id string) TaskOption {
	return func(t *domain.Task) {
		t.CaseTypeID = id
	}
}

func WithCustomerID(id string) TaskOption {
	return func(t *domain.Task) {
		t.CustomerID = id
	}
}

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithTaskDueDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.DueDate = &d
	}
}

func WithPhases(phases ...domain.PaymentPhase) TaskOption {
	return func(t *domain.Task) {
		t.Phases = append(t.Phases, phases...)
	}
}

func NewTestTask(title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:            uuid.New().String(),
		Title:         title,
		CaseTypeID:    "immigration",
		ServiceAmount: 1000,
		Status:        domain.TaskOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PaymentPhase options
type PhaseOption func(*domain.PaymentPhase)

func WithPhaseDueDate(d time.Time) PhaseOption {
	return func(p *domain.PaymentPhase) {
		p.DueDate = d
	}
}

func WithPaymentDate(d time.Time) PhaseOption {
	return func(p *domain.PaymentPhase) {
		p.PaymentDate = &d
	}
}

func WithPhaseStatus(s domain.PhaseStatus) PhaseOption {
	return func(p *domain.PaymentPhase) {
		p.Status = s
	}
}

func WithInvoiceNumber(n string) PhaseOption {
	return func(p *domain.PaymentPhase) {
		p.InvoiceNumber = n
	}
}

func WithPhaseID(id string) PhaseOption {
	return func(p *domain.PaymentPhase) {
		p.ID = id
	}
}

func NewTestPhase(taskID, name string, amount float64, opts ...PhaseOption) *domain.PaymentPhase {
	now := time.Now().UTC()
	due := Date(2025, time.March, 1)
	p := &domain.PaymentPhase{
		ID:          uuid.New().String(),
		TaskID:      taskID,
		Name:        name,
		DueDate:     due,
		PaymentDate: &due,
		Amount:      amount,
		Status:      domain.PhasePending,
		CreatedBy:   "tester",
		UpdatedBy:   "tester",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewTestCustomer(name string) *domain.Customer {
	now := time.Now().UTC()
	return &domain.Customer{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     "customer@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestFile returns a pending file of exactly size bytes.
func NewTestFile(name string, size int) *domain.PendingFile {
	return domain.NewPendingFile(name, "application/pdf", make([]byte, size))
}

// MiB is one mebibyte.
const MiB = 1 << 20
