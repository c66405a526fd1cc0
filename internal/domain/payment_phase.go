package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

type PaymentPhase struct {
	ID            string
	TaskID        string
	Name          string
	DueDate       time.Time
	PaymentDate   *time.Time
	Amount        float64
	Status        PhaseStatus
	InvoiceNumber string
	CreatedBy     string
	UpdatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// invoiceSentinels are placeholder values some records carry instead of an empty number.
var invoiceSentinels = map[string]bool{
	"-": true, "null": true, "undefined": true, "n/a": true, "none": true,
}

// IsPersisted reports whether the phase has been assigned an identifier by the system of record.
func (p *PaymentPhase) IsPersisted() bool {
	return p.ID != ""
}

// HasInvoiceNumber reports whether the phase carries a real, already-issued invoice number.
func (p *PaymentPhase) HasInvoiceNumber() bool {
	return IsIssuedInvoiceNumber(p.InvoiceNumber)
}

// IsIssuedInvoiceNumber reports whether s is non-empty and not a placeholder.
func IsIssuedInvoiceNumber(s string) bool {
	v := strings.TrimSpace(s)
	if v == "" {
		return false
	}
	return !invoiceSentinels[strings.ToLower(v)]
}

// SamePhaseName compares phase names the way the uniqueness invariant does:
// surrounding whitespace ignored, case-insensitive.
func SamePhaseName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// PhaseForm carries user-entered phase fields for create and edit.
type PhaseForm struct {
	Name        string
	DueDate     *time.Time
	PaymentDate *time.Time
	Amount      float64
	Status      PhaseStatus
}

// FormFromPhase seeds a form with the phase's current values.
func FormFromPhase(p PaymentPhase) PhaseForm {
	due := p.DueDate
	f := PhaseForm{
		Name:    p.Name,
		DueDate: &due,
		Amount:  p.Amount,
		Status:  p.Status,
	}
	if p.PaymentDate != nil {
		pd := *p.PaymentDate
		f.PaymentDate = &pd
	}
	return f
}

// Validate returns every problem with the form joined into one error.
// Each problem is a *ValidationError.
func (f PhaseForm) Validate() error {
	var errs []error
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, NewValidationError("phase_name", "required", "phase name is required"))
	}
	if f.DueDate == nil || f.DueDate.IsZero() {
		errs = append(errs, NewValidationError("due_date", "required", "due date is required"))
	}
	if math.IsNaN(f.Amount) || math.IsInf(f.Amount, 0) || f.Amount <= 0 {
		errs = append(errs, NewValidationError("phase_amount", "positive", "phase amount must be a positive number"))
	}
	if f.Status != "" && !f.Status.Valid() {
		errs = append(errs, NewValidationError("status", "enum", "status %q must be pending or paid", f.Status))
	}
	return errors.Join(errs...)
}

// ResolvedPaymentDate applies the save policy: the payment date follows the
// due date unless the form explicitly carries a different one.
func (f PhaseForm) ResolvedPaymentDate() *time.Time {
	if f.DueDate == nil {
		return nil
	}
	if f.PaymentDate != nil && !f.PaymentDate.IsZero() && !sameDay(*f.PaymentDate, *f.DueDate) {
		pd := *f.PaymentDate
		return &pd
	}
	due := *f.DueDate
	return &due
}

// ApplyTo copies the form's fields onto p, leaving identity, invoice number
// and audit fields untouched. The form must already be valid.
func (f PhaseForm) ApplyTo(p *PaymentPhase) {
	p.Name = strings.TrimSpace(f.Name)
	p.DueDate = *f.DueDate
	p.PaymentDate = f.ResolvedPaymentDate()
	p.Amount = f.Amount
	if f.Status != "" {
		p.Status = f.Status
	}
	if p.Status == "" {
		p.Status = PhasePending
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
