package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alexanderramin/casework/internal/contract"
	"github.com/alexanderramin/casework/internal/domain"
)

var pdfMagic = []byte("%PDF-")

// HTTPRenderer posts invoice payloads to an external PDF rendering service.
type HTTPRenderer struct {
	endpoint string
	http     *http.Client
	observer Observer
}

var _ InvoiceRenderer = (*HTTPRenderer)(nil)

func NewHTTPRenderer(endpoint string, timeout time.Duration, observer Observer) *HTTPRenderer {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &HTTPRenderer{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		observer: observer,
	}
}

func (r *HTTPRenderer) RenderInvoice(ctx context.Context, doc domain.InvoiceDocument) ([]byte, error) {
	if r.endpoint == "" {
		return nil, ErrRendererUnavailable
	}
	data, err := json.Marshal(contract.FromInvoiceDocument(doc))
	if err != nil {
		return nil, fmt.Errorf("marshaling invoice payload: %w", err)
	}

	start := time.Now()
	status, pdf, err := r.post(ctx, data)
	r.observer.OnCallComplete(CallEvent{
		Op:        "render_invoice",
		Method:    http.MethodPost,
		Path:      r.endpoint,
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	})
	return pdf, err
}

func (r *HTTPRenderer) post(ctx context.Context, data []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("creating render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrRendererUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading render response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil, &StatusError{
			Method:  http.MethodPost,
			Path:    r.endpoint,
			Status:  resp.StatusCode,
			Message: string(bytes.TrimSpace(body)),
		}
	}
	if !bytes.HasPrefix(body, pdfMagic) {
		return resp.StatusCode, nil, ErrInvalidPDF
	}
	return resp.StatusCode, body, nil
}
