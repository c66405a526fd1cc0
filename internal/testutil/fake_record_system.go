package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
)

// Operation names used by FakeRecordSystem for call counting and failure injection.
const (
	OpFetchTask                = "FetchTask"
	OpSaveTask                 = "SaveTask"
	OpCreateTask               = "CreateTask"
	OpUpsertCustomer           = "UpsertCustomer"
	OpCreatePaymentPhase       = "CreatePaymentPhase"
	OpUpdatePaymentPhase       = "UpdatePaymentPhase"
	OpFetchLatestInvoiceNumber = "FetchLatestInvoiceNumber"
	OpRecordInvoiceNumber      = "RecordInvoiceNumber"
	OpFetchDocumentCategories  = "FetchDocumentCategories"
	OpCreateDocumentCategory   = "CreateDocumentCategory"
	OpUploadDocument           = "UploadDocument"
	OpDeleteDocument           = "DeleteDocument"
)

// FakeRecordSystem is an in-memory RecordSystem for engine tests.
// Fail injects an error per operation; FailCategory and FailUpload inject
// per-label errors. Every call is counted, including failed ones.
type FakeRecordSystem struct {
	mu sync.Mutex

	tasks      map[string]*domain.Task
	categories map[string]map[string]int64
	latest     string
	seq        int
	nextCatID  int64
	calls      map[string]int
	uploads    []domain.UploadRequest

	Fail         map[string]error
	FailCategory map[string]error
	FailUpload   map[string]error
}

func NewFakeRecordSystem() *FakeRecordSystem {
	return &FakeRecordSystem{
		tasks:        map[string]*domain.Task{},
		categories:   map[string]map[string]int64{},
		nextCatID:    1,
		calls:        map[string]int{},
		Fail:         map[string]error{},
		FailCategory: map[string]error{},
		FailUpload:   map[string]error{},
	}
}

// PutTask stores a copy of t, replacing any task with the same id.
func (f *FakeRecordSystem) PutTask(t *domain.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t.Clone()
}

// Task returns a copy of the stored task, or nil.
func (f *FakeRecordSystem) Task(id string) *domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[id].Clone()
}

// SetLatestInvoiceNumber seeds the latest issued number; empty clears it.
func (f *FakeRecordSystem) SetLatestInvoiceNumber(n string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = n
}

// SetCategory seeds a catalog entry.
func (f *FakeRecordSystem) SetCategory(caseTypeID, label string, id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.categories[caseTypeID] == nil {
		f.categories[caseTypeID] = map[string]int64{}
	}
	f.categories[caseTypeID][label] = id
	if id >= f.nextCatID {
		f.nextCatID = id + 1
	}
}

// Calls reports how many times op was invoked.
func (f *FakeRecordSystem) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Uploads returns the upload requests received so far.
func (f *FakeRecordSystem) Uploads() []domain.UploadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.UploadRequest(nil), f.uploads...)
}

func (f *FakeRecordSystem) enter(op string) error {
	f.calls[op]++
	return f.Fail[op]
}

func (f *FakeRecordSystem) task(id string) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

func (f *FakeRecordSystem) phase(id string) (*domain.PaymentPhase, error) {
	for _, t := range f.tasks {
		for i := range t.Phases {
			if t.Phases[i].ID == id {
				return &t.Phases[i], nil
			}
		}
	}
	return nil, fmt.Errorf("payment phase %s: %w", id, domain.ErrNotFound)
}

func (f *FakeRecordSystem) nextID(kind string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", kind, f.seq)
}

func (f *FakeRecordSystem) FetchTask(_ context.Context, taskID string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpFetchTask); err != nil {
		return nil, err
	}
	t, err := f.task(taskID)
	if err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

func (f *FakeRecordSystem) SaveTask(_ context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpSaveTask); err != nil {
		return err
	}
	stored, err := f.task(t.ID)
	if err != nil {
		return err
	}
	next := t.Clone()
	next.Phases = stored.Phases
	next.Documents = stored.Documents
	next.Customer = stored.Customer
	next.UpdatedAt = time.Now().UTC()
	f.tasks[t.ID] = next
	return nil
}

func (f *FakeRecordSystem) CreateTask(_ context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpCreateTask); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = f.nextID("task")
	}
	f.tasks[t.ID] = t.Clone()
	return nil
}

func (f *FakeRecordSystem) UpsertCustomer(_ context.Context, c *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpUpsertCustomer); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = f.nextID("customer")
	}
	for _, t := range f.tasks {
		if t.CustomerID == c.ID {
			cust := *c
			t.Customer = &cust
		}
	}
	return nil
}

func (f *FakeRecordSystem) CreatePaymentPhase(_ context.Context, taskID string, p *domain.PaymentPhase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpCreatePaymentPhase); err != nil {
		return err
	}
	t, err := f.task(taskID)
	if err != nil {
		return err
	}
	for _, existing := range t.Phases {
		if domain.SamePhaseName(existing.Name, p.Name) {
			return fmt.Errorf("phase %q: %w", p.Name, domain.ErrConflict)
		}
	}
	p.ID = f.nextID("phase")
	p.TaskID = taskID
	if p.Status == "" {
		p.Status = domain.PhasePending
	}
	t.Phases = append(t.Phases, domain.ClonePhases([]domain.PaymentPhase{*p})[0])
	return nil
}

func (f *FakeRecordSystem) UpdatePaymentPhase(_ context.Context, p *domain.PaymentPhase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpUpdatePaymentPhase); err != nil {
		return err
	}
	stored, err := f.phase(p.ID)
	if err != nil {
		return err
	}
	invoice := stored.InvoiceNumber
	*stored = domain.ClonePhases([]domain.PaymentPhase{*p})[0]
	stored.InvoiceNumber = invoice
	return nil
}

func (f *FakeRecordSystem) FetchLatestInvoiceNumber(_ context.Context, phaseID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpFetchLatestInvoiceNumber); err != nil {
		return "", false, err
	}
	if _, err := f.phase(phaseID); err != nil {
		return "", false, err
	}
	return f.latest, f.latest != "", nil
}

func (f *FakeRecordSystem) RecordInvoiceNumber(_ context.Context, phaseID, number string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpRecordInvoiceNumber); err != nil {
		return err
	}
	p, err := f.phase(phaseID)
	if err != nil {
		return err
	}
	if p.HasInvoiceNumber() {
		return fmt.Errorf("phase %s already invoiced: %w", phaseID, domain.ErrConflict)
	}
	p.InvoiceNumber = number
	f.latest = number
	return nil
}

func (f *FakeRecordSystem) FetchDocumentCategories(_ context.Context, caseTypeID string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpFetchDocumentCategories); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(f.categories[caseTypeID]))
	for k, v := range f.categories[caseTypeID] {
		out[k] = v
	}
	return out, nil
}

func (f *FakeRecordSystem) CreateDocumentCategory(_ context.Context, caseTypeID, label string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpCreateDocumentCategory); err != nil {
		return 0, err
	}
	if err := f.FailCategory[label]; err != nil {
		return 0, err
	}
	if f.categories[caseTypeID] == nil {
		f.categories[caseTypeID] = map[string]int64{}
	}
	if id, ok := f.categories[caseTypeID][label]; ok {
		return id, nil
	}
	id := f.nextCatID
	f.nextCatID++
	f.categories[caseTypeID][label] = id
	return id, nil
}

func (f *FakeRecordSystem) UploadDocument(_ context.Context, req domain.UploadRequest) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpUploadDocument); err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, req)
	if err := f.FailUpload[req.Label]; err != nil {
		return nil, err
	}
	t, err := f.task(req.TaskID)
	if err != nil {
		return nil, err
	}
	d := domain.Document{
		ID:          f.nextID("doc"),
		TaskID:      req.TaskID,
		CategoryID:  req.CategoryID,
		Label:       req.Label,
		FileName:    req.File.Name,
		ContentType: req.File.ContentType,
		SizeBytes:   req.File.Size,
		Visible:     req.Visible,
		UploadedBy:  req.UploadedBy,
		CreatedAt:   time.Now().UTC(),
	}
	t.Documents = append(t.Documents, d)
	return &d, nil
}

func (f *FakeRecordSystem) DeleteDocument(_ context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(OpDeleteDocument); err != nil {
		return err
	}
	for _, t := range f.tasks {
		for i, d := range t.Documents {
			if d.ID == documentID {
				t.Documents = append(t.Documents[:i], t.Documents[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
}

// HasCategory reports whether label exists in the catalog of caseTypeID.
func (f *FakeRecordSystem) HasCategory(caseTypeID, label string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.categories[caseTypeID][strings.TrimSpace(label)]
	return ok
}
