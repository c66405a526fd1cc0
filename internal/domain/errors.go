package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates invalid or missing input. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrCategoryCreationFailed indicates a document category could not be created.
	ErrCategoryCreationFailed = errors.New("category creation failed")

	// ErrInvoiceAllocationFailed indicates an invoice number could not be fetched or recorded.
	ErrInvoiceAllocationFailed = errors.New("invoice allocation failed")

	// ErrUploadFailed indicates a document upload was not accepted.
	ErrUploadFailed = errors.New("upload failed")

	// ErrPersistence indicates a task or phase save was rejected or did not complete.
	ErrPersistence = errors.New("persistence failed")

	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the write collides with existing state.
	ErrConflict = errors.New("conflict")
)

// Upload rejection reasons reported by the size budget.
const (
	ReasonPerFileLimit   = "per_file_limit"
	ReasonAggregateLimit = "aggregate_limit"
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for field with a formatted message.
func NewValidationError(field, reason, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// OpError ties a failure to the operation and the label or phase it concerned.
// Kind is one of the package sentinels; Err is the underlying cause.
type OpError struct {
	Kind    error
	Op      string
	Subject string
	Status  int
	Err     error
}

func (e *OpError) Error() string {
	msg := fmt.Sprintf("%s %q: %v", e.Op, e.Subject, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StatusCoder is implemented by transport errors that carry an HTTP-equivalent status.
type StatusCoder interface {
	StatusCode() int
}

// NewOpError wraps cause as kind, lifting any transport status from the cause chain.
func NewOpError(kind error, op, subject string, cause error) *OpError {
	e := &OpError{Kind: kind, Op: op, Subject: subject, Err: cause}
	var sc StatusCoder
	if errors.As(cause, &sc) {
		e.Status = sc.StatusCode()
	}
	return e
}
