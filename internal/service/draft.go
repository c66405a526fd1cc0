package service

import (
	"time"

	"github.com/alexanderramin/casework/internal/domain"
)

// TaskDraft holds the editable task-level fields of an edit session.
type TaskDraft struct {
	Title         string
	Description   string
	CaseTypeID    string
	CustomerID    string
	ServiceAmount float64
	Status        domain.TaskStatus
	DueDate       *time.Time
}

func DraftFromTask(t *domain.Task) TaskDraft {
	d := TaskDraft{
		Title:         t.Title,
		Description:   t.Description,
		CaseTypeID:    t.CaseTypeID,
		CustomerID:    t.CustomerID,
		ServiceAmount: t.ServiceAmount,
		Status:        t.Status,
	}
	if t.DueDate != nil {
		due := *t.DueDate
		d.DueDate = &due
	}
	return d
}

// ApplyTo copies the draft fields onto t.
func (d TaskDraft) ApplyTo(t *domain.Task) {
	t.Title = d.Title
	t.Description = d.Description
	t.CaseTypeID = d.CaseTypeID
	t.CustomerID = d.CustomerID
	t.ServiceAmount = d.ServiceAmount
	t.Status = d.Status
	t.DueDate = nil
	if d.DueDate != nil {
		due := *d.DueDate
		t.DueDate = &due
	}
}

func (d TaskDraft) Validate() error {
	var t domain.Task
	d.ApplyTo(&t)
	return t.ValidateFields()
}

// FieldChange is one task field that differs between snapshots.
type FieldChange struct {
	Field string
	From  any
	To    any
}

// DiffTask lists the task fields the draft changes relative to persisted.
func DiffTask(persisted *domain.Task, draft TaskDraft) []FieldChange {
	base := DraftFromTask(persisted)
	var changes []FieldChange
	add := func(field string, from, to any) {
		changes = append(changes, FieldChange{Field: field, From: from, To: to})
	}
	if base.Title != draft.Title {
		add("title", base.Title, draft.Title)
	}
	if base.Description != draft.Description {
		add("description", base.Description, draft.Description)
	}
	if base.CaseTypeID != draft.CaseTypeID {
		add("case_type_id", base.CaseTypeID, draft.CaseTypeID)
	}
	if base.CustomerID != draft.CustomerID {
		add("customer_id", base.CustomerID, draft.CustomerID)
	}
	if base.ServiceAmount != draft.ServiceAmount {
		add("service_amount", base.ServiceAmount, draft.ServiceAmount)
	}
	if base.Status != draft.Status {
		add("status", base.Status, draft.Status)
	}
	if !sameDate(base.DueDate, draft.DueDate) {
		add("due_date", base.DueDate, draft.DueDate)
	}
	return changes
}

// PhaseChange names the fields of one phase that differ between snapshots.
type PhaseChange struct {
	Index  int
	ID     string
	Fields []string
}

// DiffPhases compares phases position by position. Both slices come from the
// same fetch, so positions identify the same phase.
func DiffPhases(persisted, draft []domain.PaymentPhase) []PhaseChange {
	var changes []PhaseChange
	for i := range min(len(persisted), len(draft)) {
		p, d := persisted[i], draft[i]
		var fields []string
		if p.Name != d.Name {
			fields = append(fields, "phase_name")
		}
		if !p.DueDate.Equal(d.DueDate) {
			fields = append(fields, "due_date")
		}
		if !sameDate(p.PaymentDate, d.PaymentDate) {
			fields = append(fields, "payment_date")
		}
		if p.Amount != d.Amount {
			fields = append(fields, "phase_amount")
		}
		if p.Status != d.Status {
			fields = append(fields, "status")
		}
		if len(fields) > 0 {
			changes = append(changes, PhaseChange{Index: i, ID: p.ID, Fields: fields})
		}
	}
	return changes
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
