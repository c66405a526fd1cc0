package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alexanderramin/casework/internal/domain"
)

var (
	// ErrRendererUnavailable indicates no renderer endpoint is configured or reachable.
	ErrRendererUnavailable = errors.New("invoice renderer unavailable")

	// ErrInvalidPDF indicates the renderer returned something other than a PDF.
	ErrInvalidPDF = errors.New("renderer returned invalid pdf")
)

// StatusError is a non-2xx response from a remote endpoint.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, msg)
}

func (e *StatusError) StatusCode() int {
	return e.Status
}

// Unwrap maps the status onto the domain sentinels so callers can use errors.Is.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return domain.ErrValidation
	default:
		return nil
	}
}
