package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/casework/internal/contract"
	"github.com/alexanderramin/casework/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCallObserver struct {
	mu     sync.Mutex
	events []CallEvent
}

func (o *recordingCallObserver) OnCallComplete(e CallEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{"not found", http.StatusNotFound, contract.CodeNotFound, domain.ErrNotFound},
		{"conflict", http.StatusConflict, contract.CodeConflict, domain.ErrConflict},
		{"bad request", http.StatusBadRequest, contract.CodeValidation, domain.ErrValidation},
		{"too large", http.StatusRequestEntityTooLarge, contract.CodeTooLarge, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, contract.ErrorBody{Error: "nope", Code: tt.code})
			}))
			defer srv.Close()

			obs := &recordingCallObserver{}
			c := NewHTTPClient(srv.URL, time.Second, obs)
			_, err := c.FetchTask(context.Background(), "t1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.Status)
			assert.Equal(t, tt.code, se.Code)
			assert.Equal(t, "nope", se.Message)

			require.Len(t, obs.events, 1)
			assert.Equal(t, "fetch_task", obs.events[0].Op)
			assert.False(t, obs.events[0].Success)
		})
	}
}

func TestHTTPClient_ServerErrorIsUnclassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPClient(srv.URL, time.Second, nil).DeleteDocument(context.Background(), "d1")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "upstream exploded", se.Message)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestHTTPClient_LatestInvoiceNumberAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/phases/p1/invoice-number/latest", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n, ok, err := NewHTTPClient(srv.URL, time.Second, nil).FetchLatestInvoiceNumber(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, n)
}

func TestHTTPClient_CreatePaymentPhase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks/t1/phases", r.URL.Path)
		var rec contract.PhaseRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "2025-03-01", rec.DueDate)
		rec.ID = "p-9"
		rec.TaskID = "t1"
		rec.Status = "pending"
		writeJSON(w, http.StatusCreated, rec)
	}))
	defer srv.Close()

	due := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	p := &domain.PaymentPhase{Name: "Agreement", DueDate: due, Amount: 100}
	require.NoError(t, NewHTTPClient(srv.URL, time.Second, nil).CreatePaymentPhase(context.Background(), "t1", p))
	assert.Equal(t, "p-9", p.ID)
	assert.Equal(t, domain.PhasePending, p.Status)
	assert.True(t, p.DueDate.Equal(due))
}

func TestHTTPClient_UploadDocumentMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "7", r.FormValue("category_id"))
		assert.Equal(t, "Passport", r.FormValue("label"))
		assert.Equal(t, "true", r.FormValue("visible"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "passport.pdf", hdr.Filename)
		writeJSON(w, http.StatusCreated, contract.DocumentRecord{
			ID: "d1", TaskID: "t1", CategoryID: 7, Label: "Passport",
			FileName: hdr.Filename, SizeBytes: int64(len(data)), Visible: true,
		})
	}))
	defer srv.Close()

	doc, err := NewHTTPClient(srv.URL, time.Second, nil).UploadDocument(context.Background(), domain.UploadRequest{
		TaskID:     "t1",
		CategoryID: 7,
		Label:      "Passport",
		File:       domain.NewPendingFile("passport.pdf", "application/pdf", []byte("%PDF-1.4")),
		Visible:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, int64(8), doc.SizeBytes)
}

func TestHTTPClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, 20*time.Millisecond, nil).FetchTask(context.Background(), "t1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
