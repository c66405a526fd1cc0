package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/casework/internal/contract"
	"github.com/alexanderramin/casework/internal/domain"
)

// HTTPClient implements RecordSystem against the casework REST API.
// Calls are never retried.
type HTTPClient struct {
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	observer Observer
}

var _ RecordSystem = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the API rooted at baseURL.
// A non-positive timeout disables the per-request deadline.
func NewHTTPClient(baseURL string, timeout time.Duration, observer Observer) *HTTPClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type call struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
}

func jsonCall(op, method, path string, payload any) (call, error) {
	c := call{op: op, method: method, path: path}
	if payload == nil {
		return c, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return c, fmt.Errorf("marshaling %s request: %w", op, err)
	}
	c.body = bytes.NewReader(data)
	c.contentType = "application/json"
	return c, nil
}

// do executes c and decodes a JSON response into out when out is non-nil.
// It returns the response status; non-2xx statuses come back as *StatusError.
func (c *HTTPClient) do(ctx context.Context, cl call, out any) (int, error) {
	start := time.Now()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	status, err := c.roundTrip(ctx, cl, out)
	c.observer.OnCallComplete(CallEvent{
		Op:        cl.op,
		Method:    cl.method,
		Path:      cl.path,
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	})
	return status, err
}

func (c *HTTPClient) roundTrip(ctx context.Context, cl call, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return 0, fmt.Errorf("creating %s request: %w", cl.op, err)
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cl.op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading %s response: %w", cl.op, err)
	}

	if resp.StatusCode >= 300 {
		se := &StatusError{Method: cl.method, Path: cl.path, Status: resp.StatusCode}
		var body contract.ErrorBody
		if json.Unmarshal(respBody, &body) == nil {
			se.Code = body.Code
			se.Message = body.Error
		} else {
			se.Message = strings.TrimSpace(string(respBody))
		}
		return resp.StatusCode, se
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding %s response: %w", cl.op, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) FetchTask(ctx context.Context, taskID string) (*domain.Task, error) {
	var rec contract.TaskRecord
	cl := call{op: "fetch_task", method: http.MethodGet, path: "/api/tasks/" + url.PathEscape(taskID)}
	if _, err := c.do(ctx, cl, &rec); err != nil {
		return nil, err
	}
	return rec.ToDomain()
}

func (c *HTTPClient) CreateTask(ctx context.Context, t *domain.Task) error {
	cl, err := jsonCall("create_task", http.MethodPost, "/api/tasks", contract.FromTask(t))
	if err != nil {
		return err
	}
	var rec contract.TaskRecord
	if _, err := c.do(ctx, cl, &rec); err != nil {
		return err
	}
	t.ID = rec.ID
	t.Status = domain.TaskStatus(rec.Status)
	t.CreatedAt = rec.CreatedAt
	t.UpdatedAt = rec.UpdatedAt
	return nil
}

func (c *HTTPClient) SaveTask(ctx context.Context, t *domain.Task) error {
	cl, err := jsonCall("save_task", http.MethodPut, "/api/tasks/"+url.PathEscape(t.ID), contract.FromTask(t))
	if err != nil {
		return err
	}
	_, err = c.do(ctx, cl, nil)
	return err
}

func (c *HTTPClient) UpsertCustomer(ctx context.Context, cust *domain.Customer) error {
	path := "/api/customers"
	method := http.MethodPost
	if cust.ID != "" {
		path += "/" + url.PathEscape(cust.ID)
		method = http.MethodPut
	}
	cl, err := jsonCall("upsert_customer", method, path, contract.FromCustomer(*cust))
	if err != nil {
		return err
	}
	var rec contract.CustomerRecord
	if _, err := c.do(ctx, cl, &rec); err != nil {
		return err
	}
	cust.ID = rec.ID
	cust.CreatedAt = rec.CreatedAt
	cust.UpdatedAt = rec.UpdatedAt
	return nil
}

func (c *HTTPClient) CreatePaymentPhase(ctx context.Context, taskID string, p *domain.PaymentPhase) error {
	path := "/api/tasks/" + url.PathEscape(taskID) + "/phases"
	cl, err := jsonCall("create_payment_phase", http.MethodPost, path, contract.FromPhase(*p))
	if err != nil {
		return err
	}
	var rec contract.PhaseRecord
	if _, err := c.do(ctx, cl, &rec); err != nil {
		return err
	}
	created, err := rec.ToDomain()
	if err != nil {
		return err
	}
	*p = created
	return nil
}

func (c *HTTPClient) UpdatePaymentPhase(ctx context.Context, p *domain.PaymentPhase) error {
	cl, err := jsonCall("update_payment_phase", http.MethodPut, "/api/phases/"+url.PathEscape(p.ID), contract.FromPhase(*p))
	if err != nil {
		return err
	}
	_, err = c.do(ctx, cl, nil)
	return err
}

func (c *HTTPClient) FetchLatestInvoiceNumber(ctx context.Context, phaseID string) (string, bool, error) {
	var payload contract.InvoiceNumberPayload
	cl := call{
		op:     "fetch_latest_invoice_number",
		method: http.MethodGet,
		path:   "/api/phases/" + url.PathEscape(phaseID) + "/invoice-number/latest",
	}
	status, err := c.do(ctx, cl, &payload)
	if err != nil {
		return "", false, err
	}
	if status == http.StatusNoContent || payload.InvoiceNumber == "" {
		return "", false, nil
	}
	return payload.InvoiceNumber, true, nil
}

func (c *HTTPClient) RecordInvoiceNumber(ctx context.Context, phaseID, number string) error {
	path := "/api/phases/" + url.PathEscape(phaseID) + "/invoice-number"
	cl, err := jsonCall("record_invoice_number", http.MethodPut, path, contract.InvoiceNumberPayload{InvoiceNumber: number})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, cl, nil)
	return err
}

func (c *HTTPClient) FetchDocumentCategories(ctx context.Context, caseTypeID string) (map[string]int64, error) {
	var recs []contract.CategoryRecord
	cl := call{
		op:     "fetch_document_categories",
		method: http.MethodGet,
		path:   "/api/case-types/" + url.PathEscape(caseTypeID) + "/categories",
	}
	if _, err := c.do(ctx, cl, &recs); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(recs))
	for _, r := range recs {
		out[r.Label] = r.ID
	}
	return out, nil
}

func (c *HTTPClient) CreateDocumentCategory(ctx context.Context, caseTypeID, label string) (int64, error) {
	path := "/api/case-types/" + url.PathEscape(caseTypeID) + "/categories"
	cl, err := jsonCall("create_document_category", http.MethodPost, path, contract.CategoryCreateRequest{Label: label})
	if err != nil {
		return 0, err
	}
	var rec contract.CategoryRecord
	if _, err := c.do(ctx, cl, &rec); err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func (c *HTTPClient) UploadDocument(ctx context.Context, req domain.UploadRequest) (*domain.Document, error) {
	if req.File == nil {
		return nil, domain.NewValidationError("file", "required", "a file is required")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"category_id": strconv.FormatInt(req.CategoryID, 10),
		"label":       req.Label,
		"visible":     strconv.FormatBool(req.Visible),
		"uploaded_by": req.UploadedBy,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("writing %s field: %w", k, err)
		}
	}
	fw, err := mw.CreateFormFile("file", req.File.Name)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := fw.Write(req.File.Data); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	cl := call{
		op:          "upload_document",
		method:      http.MethodPost,
		path:        "/api/tasks/" + url.PathEscape(req.TaskID) + "/documents",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}
	var rec contract.DocumentRecord
	if _, err := c.do(ctx, cl, &rec); err != nil {
		return nil, err
	}
	d := rec.ToDomain()
	return &d, nil
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, documentID string) error {
	cl := call{op: "delete_document", method: http.MethodDelete, path: "/api/documents/" + url.PathEscape(documentID)}
	_, err := c.do(ctx, cl, nil)
	return err
}
