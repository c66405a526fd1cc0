// Package contract holds the JSON wire types exchanged between the REST API
// and its HTTP client, plus the payload sent to the invoice renderer.
package contract

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

type TaskRecord struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	CaseTypeID    string           `json:"case_type_id"`
	CustomerID    string           `json:"customer_id,omitempty"`
	ServiceAmount float64          `json:"service_amount"`
	Status        string           `json:"status"`
	DueDate       string           `json:"due_date,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Phases        []PhaseRecord    `json:"phases"`
	Documents     []DocumentRecord `json:"documents"`
	Customer      *CustomerRecord  `json:"customer,omitempty"`
}

type PhaseRecord struct {
	ID            string    `json:"id,omitempty"`
	TaskID        string    `json:"task_id,omitempty"`
	PhaseName     string    `json:"phase_name"`
	DueDate       string    `json:"due_date"`
	PaymentDate   string    `json:"payment_date,omitempty"`
	PhaseAmount   float64   `json:"phase_amount"`
	Status        string    `json:"status,omitempty"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	UpdatedBy     string    `json:"updated_by,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

type DocumentRecord struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	CategoryID  int64     `json:"category_id"`
	Label       string    `json:"label"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Visible     bool      `json:"visible"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CustomerRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

type CategoryRecord struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type CategoryCreateRequest struct {
	Label string `json:"label"`
}

type InvoiceNumberPayload struct {
	InvoiceNumber string `json:"invoice_number"`
}

// ErrorBody is returned by the API for every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error codes carried in ErrorBody.Code.
const (
	CodeValidation = "validation"
	CodeNotFound   = "not_found"
	CodeConflict   = "conflict"
	CodeTooLarge   = "too_large"
	CodeInternal   = "internal"
)

// InvoicePayload is the renderer request body.
type InvoicePayload struct {
	InvoiceNumber string         `json:"invoice_number"`
	IssuedOn      string         `json:"issued_on"`
	Phase         PhaseRecord    `json:"phase"`
	Task          TaskRecord     `json:"task"`
	Customer      CustomerRecord `json:"customer"`
}
