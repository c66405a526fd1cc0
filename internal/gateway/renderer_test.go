package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/casework/internal/contract"
	"github.com/alexanderramin/casework/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceDoc() domain.InvoiceDocument {
	due := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	return domain.InvoiceDocument{
		InvoiceNumber: "ECSI-25-0001",
		IssuedOn:      due,
		Phase:         domain.PaymentPhase{ID: "p1", Name: "Agreement", DueDate: due, Amount: 100},
		Task:          domain.Task{ID: "t1", Title: "Visa", CaseTypeID: "immigration"},
		Customer:      domain.Customer{ID: "c1", Name: "Jordan Lee"},
	}
}

func TestHTTPRenderer_RenderInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload contract.InvoicePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ECSI-25-0001", payload.InvoiceNumber)
		assert.Equal(t, "Jordan Lee", payload.Customer.Name)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7\n..."))
	}))
	defer srv.Close()

	obs := &recordingCallObserver{}
	pdf, err := NewHTTPRenderer(srv.URL, time.Second, obs).RenderInvoice(context.Background(), invoiceDoc())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7\n...", string(pdf))
	require.Len(t, obs.events, 1)
	assert.Equal(t, "render_invoice", obs.events[0].Op)
	assert.Equal(t, http.StatusOK, obs.events[0].Status)
}

func TestHTTPRenderer_Failures(t *testing.T) {
	t.Run("no endpoint", func(t *testing.T) {
		_, err := NewHTTPRenderer("", time.Second, nil).RenderInvoice(context.Background(), invoiceDoc())
		assert.ErrorIs(t, err, ErrRendererUnavailable)
	})

	t.Run("not a pdf", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		}))
		defer srv.Close()
		_, err := NewHTTPRenderer(srv.URL, time.Second, nil).RenderInvoice(context.Background(), invoiceDoc())
		assert.ErrorIs(t, err, ErrInvalidPDF)
	})

	t.Run("rejected payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "missing customer", http.StatusUnprocessableEntity)
		}))
		defer srv.Close()
		_, err := NewHTTPRenderer(srv.URL, time.Second, nil).RenderInvoice(context.Background(), invoiceDoc())
		assert.ErrorIs(t, err, domain.ErrValidation)
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "missing customer", se.Message)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		_, err := NewHTTPRenderer(url, time.Second, nil).RenderInvoice(context.Background(), invoiceDoc())
		assert.ErrorIs(t, err, ErrRendererUnavailable)
	})
}
