package domain

import (
	"math"
	"strings"
	"time"
)

type Task struct {
	ID            string
	Title         string
	Description   string
	CaseTypeID    string
	CustomerID    string
	ServiceAmount float64
	Status        TaskStatus
	DueDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Nested sub-resources, populated on fetch.
	Phases    []PaymentPhase
	Documents []Document
	Customer  *Customer
}

// ValidateFields checks the task-level fields required before a save.
func (t *Task) ValidateFields() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "required", "task title is required")
	}
	if strings.TrimSpace(t.CaseTypeID) == "" {
		return NewValidationError("case_type_id", "required", "case type is required")
	}
	if math.IsNaN(t.ServiceAmount) || math.IsInf(t.ServiceAmount, 0) || t.ServiceAmount < 0 {
		return NewValidationError("service_amount", "non_negative", "service amount must not be negative")
	}
	if t.Status != "" && !ValidTaskStatuses[string(t.Status)] {
		return NewValidationError("status", "enum", "unknown task status %q", t.Status)
	}
	return nil
}

// TotalPhaseAmount sums the amounts of all phases.
func TotalPhaseAmount(phases []PaymentPhase) float64 {
	var total float64
	for _, p := range phases {
		total += p.Amount
	}
	return total
}

// PendingAmount is the part of the service amount not yet covered by phases.
// It never goes below zero.
func PendingAmount(serviceAmount float64, phases []PaymentPhase) float64 {
	return math.Max(0, serviceAmount-TotalPhaseAmount(phases))
}

// Clone returns a deep copy so snapshots never share slices or pointers.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.Phases = ClonePhases(t.Phases)
	if t.Documents != nil {
		c.Documents = append([]Document(nil), t.Documents...)
	}
	if t.Customer != nil {
		cust := *t.Customer
		c.Customer = &cust
	}
	return &c
}

// ClonePhases deep-copies a phase slice.
func ClonePhases(phases []PaymentPhase) []PaymentPhase {
	if phases == nil {
		return nil
	}
	out := make([]PaymentPhase, len(phases))
	for i, p := range phases {
		if p.PaymentDate != nil {
			pd := *p.PaymentDate
			p.PaymentDate = &pd
		}
		out[i] = p
	}
	return out
}
