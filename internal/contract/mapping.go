package contract

import (
	"fmt"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
)

func FromTask(t *domain.Task) TaskRecord {
	r := TaskRecord{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		CaseTypeID:    t.CaseTypeID,
		CustomerID:    t.CustomerID,
		ServiceAmount: t.ServiceAmount,
		Status:        string(t.Status),
		DueDate:       formatDate(t.DueDate),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Phases:        make([]PhaseRecord, 0, len(t.Phases)),
		Documents:     make([]DocumentRecord, 0, len(t.Documents)),
	}
	for _, p := range t.Phases {
		r.Phases = append(r.Phases, FromPhase(p))
	}
	for _, d := range t.Documents {
		r.Documents = append(r.Documents, FromDocument(d))
	}
	if t.Customer != nil {
		c := FromCustomer(*t.Customer)
		r.Customer = &c
	}
	return r
}

// ToDomain converts the record, including nested phases, documents and customer.
func (r TaskRecord) ToDomain() (*domain.Task, error) {
	due, err := ParseDate(r.DueDate)
	if err != nil {
		return nil, fmt.Errorf("task due_date: %w", err)
	}
	t := &domain.Task{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		CaseTypeID:    r.CaseTypeID,
		CustomerID:    r.CustomerID,
		ServiceAmount: r.ServiceAmount,
		Status:        domain.TaskStatus(r.Status),
		DueDate:       due,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for _, pr := range r.Phases {
		p, err := pr.ToDomain()
		if err != nil {
			return nil, err
		}
		t.Phases = append(t.Phases, p)
	}
	for _, dr := range r.Documents {
		t.Documents = append(t.Documents, dr.ToDomain())
	}
	if r.Customer != nil {
		c := r.Customer.ToDomain()
		t.Customer = &c
	}
	return t, nil
}

func FromPhase(p domain.PaymentPhase) PhaseRecord {
	r := PhaseRecord{
		ID:            p.ID,
		TaskID:        p.TaskID,
		PhaseName:     p.Name,
		PaymentDate:   formatDate(p.PaymentDate),
		PhaseAmount:   p.Amount,
		Status:        string(p.Status),
		InvoiceNumber: p.InvoiceNumber,
		CreatedBy:     p.CreatedBy,
		UpdatedBy:     p.UpdatedBy,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if !p.DueDate.IsZero() {
		r.DueDate = p.DueDate.Format(DateLayout)
	}
	return r
}

// ToDomain converts the record. A missing or unknown status becomes pending.
func (r PhaseRecord) ToDomain() (domain.PaymentPhase, error) {
	p := domain.PaymentPhase{
		ID:            r.ID,
		TaskID:        r.TaskID,
		Name:          r.PhaseName,
		Amount:        r.PhaseAmount,
		Status:        domain.NormalizePhaseStatus(r.Status),
		InvoiceNumber: r.InvoiceNumber,
		CreatedBy:     r.CreatedBy,
		UpdatedBy:     r.UpdatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	due, err := ParseDate(r.DueDate)
	if err != nil {
		return p, fmt.Errorf("phase %q due_date: %w", r.PhaseName, err)
	}
	if due != nil {
		p.DueDate = *due
	}
	p.PaymentDate, err = ParseDate(r.PaymentDate)
	if err != nil {
		return p, fmt.Errorf("phase %q payment_date: %w", r.PhaseName, err)
	}
	return p, nil
}

func FromDocument(d domain.Document) DocumentRecord {
	return DocumentRecord{
		ID:          d.ID,
		TaskID:      d.TaskID,
		CategoryID:  d.CategoryID,
		Label:       d.Label,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		Visible:     d.Visible,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
	}
}

func (r DocumentRecord) ToDomain() domain.Document {
	return domain.Document{
		ID:          r.ID,
		TaskID:      r.TaskID,
		CategoryID:  r.CategoryID,
		Label:       r.Label,
		FileName:    r.FileName,
		ContentType: r.ContentType,
		SizeBytes:   r.SizeBytes,
		Visible:     r.Visible,
		UploadedBy:  r.UploadedBy,
		CreatedAt:   r.CreatedAt,
	}
}

func FromCustomer(c domain.Customer) CustomerRecord {
	return CustomerRecord{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (r CustomerRecord) ToDomain() domain.Customer {
	return domain.Customer{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// FromInvoiceDocument builds the renderer payload from a validated document.
func FromInvoiceDocument(d domain.InvoiceDocument) InvoicePayload {
	return InvoicePayload{
		InvoiceNumber: d.InvoiceNumber,
		IssuedOn:      d.IssuedOn.Format(DateLayout),
		Phase:         FromPhase(d.Phase),
		Task:          FromTask(&d.Task),
		Customer:      FromCustomer(d.Customer),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses a wire date; the empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
