package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
	"github.com/alexanderramin/casework/internal/gateway"
)

// ErrNotLoaded is returned by operations that need a task before Load ran.
var ErrNotLoaded = errors.New("no task loaded")

// ReconcilerConfig carries the settings shared by every edit session.
type ReconcilerConfig struct {
	Actor             string
	InvoicePrefix     string
	MaxFileBytes      int64
	MaxAggregateBytes int64
	DefaultVisible    bool
	Now               func() time.Time
}

// TaskReconciler keeps the local draft of one task, with its phases and
// documents, consistent with the system of record.
type TaskReconciler struct {
	records  gateway.RecordSystem
	renderer gateway.InvoiceRenderer
	cfg      ReconcilerConfig
	observer UseCaseObserver

	persisted *domain.Task
	draft     TaskDraft
	resolver  *CategoryResolver
	allocator *InvoiceAllocator
	phases    *PhaseStore
	uploads   *UploadCoordinator
}

// SaveResult reports what a save did beyond persisting the task record.
type SaveResult struct {
	// PhaseErr joins failures saving toggled phases.
	PhaseErr error
	// Uploads is nil when no document was pending.
	Uploads *UploadReport
}

// Err joins every non-fatal failure of the save.
func (r *SaveResult) Err() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.PhaseErr, r.Uploads.Err())
}

func NewTaskReconciler(records gateway.RecordSystem, renderer gateway.InvoiceRenderer, cfg ReconcilerConfig, observers ...UseCaseObserver) *TaskReconciler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	obs := useCaseObserverOrNoop(observers)
	return &TaskReconciler{
		records:  records,
		renderer: renderer,
		cfg:      cfg,
		observer: obs,
		allocator: NewInvoiceAllocator(records, cfg.InvoicePrefix,
			WithClock(cfg.Now), WithAllocatorObserver(obs)),
	}
}

// Load fetches taskID and rebuilds every sub-resource state from it.
// Phases and documents start persisted; there are no drafts after a load.
func (r *TaskReconciler) Load(ctx context.Context, taskID string) (err error) {
	defer observe(ctx, r.observer, UseCaseTaskLoad, time.Now(), map[string]any{"task_id": taskID}, &err)

	t, err := r.records.FetchTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("loading task %s: %w", taskID, err)
	}

	resolver := NewCategoryResolver(r.records, t.CaseTypeID, r.observer)
	if err := resolver.Seed(ctx); err != nil {
		return err
	}

	r.persisted = t
	r.draft = DraftFromTask(t)
	r.resolver = resolver
	r.phases = NewPhaseStore(t.ID, r.records, r.allocator, r.refresh, r.cfg.Actor, r.observer)
	r.phases.Load(t.Phases)
	r.uploads = NewUploadCoordinator(t.ID, r.records, resolver,
		NewSizeBudget(r.cfg.MaxFileBytes, r.cfg.MaxAggregateBytes),
		CoordinatorConfig{Actor: r.cfg.Actor, DefaultVisible: r.cfg.DefaultVisible, Refresh: r.refresh},
		r.observer)
	r.uploads.Load(t.Documents)
	return nil
}

// refresh re-fetches the task and rebases the sub-resource states on it,
// keeping the task draft, phase toggles and pending files.
func (r *TaskReconciler) refresh(ctx context.Context) error {
	t, err := r.records.FetchTask(ctx, r.persisted.ID)
	if err != nil {
		return fmt.Errorf("re-fetching task %s: %w", r.persisted.ID, err)
	}
	r.persisted = t
	r.phases.Load(t.Phases)
	r.uploads.Load(t.Documents)
	return nil
}

func (r *TaskReconciler) Loaded() bool {
	return r.persisted != nil
}

// Task returns a copy of the last fetched task.
func (r *TaskReconciler) Task() *domain.Task {
	return r.persisted.Clone()
}

func (r *TaskReconciler) Draft() TaskDraft {
	return r.draft
}

// EditDraft applies fn to the task draft.
func (r *TaskReconciler) EditDraft(fn func(*TaskDraft)) {
	fn(&r.draft)
}

func (r *TaskReconciler) Phases() *PhaseStore {
	return r.phases
}

func (r *TaskReconciler) Uploads() *UploadCoordinator {
	return r.uploads
}

func (r *TaskReconciler) Categories() *CategoryResolver {
	return r.resolver
}

// Save validates draft, persists the task record and only then sends
// toggled phases and pending documents. A rejected task save stops the
// session's uploads. Phase and upload failures are reported in the result.
func (r *TaskReconciler) Save(ctx context.Context, draft TaskDraft) (result *SaveResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, r.observer, UseCaseTaskSave, time.Now(), fields, &err)

	if !r.Loaded() {
		return nil, ErrNotLoaded
	}
	fields["task_id"] = r.persisted.ID

	if err := draft.Validate(); err != nil {
		return nil, err
	}
	r.draft = draft

	t := r.persisted.Clone()
	draft.ApplyTo(t)
	if err := r.records.SaveTask(ctx, t); err != nil {
		return nil, domain.NewOpError(domain.ErrPersistence, "save_task", t.ID, err)
	}
	caseTypeChanged := t.CaseTypeID != r.persisted.CaseTypeID
	r.persisted = t

	// Pending documents belong to the catalog of the case type just saved.
	if caseTypeChanged {
		resolver := NewCategoryResolver(r.records, t.CaseTypeID, r.observer)
		if err := resolver.Seed(ctx); err != nil {
			return nil, err
		}
		r.resolver = resolver
		r.uploads.SetResolver(resolver)
	}

	result = &SaveResult{PhaseErr: r.phases.SaveDirty(ctx)}
	if r.uploads.HasPending() {
		result.Uploads, err = r.uploads.SubmitAll(ctx)
		if err != nil {
			return result, err
		}
		fields["uploads_succeeded"] = result.Uploads.Succeeded
		fields["uploads_failed"] = result.Uploads.Failed
	}

	if !result.Uploads.Success() {
		if err := r.refresh(ctx); err != nil {
			return result, err
		}
	}
	r.draft = DraftFromTask(r.persisted)
	return result, nil
}

// Abandon reverts all drafts to the persisted snapshot and drops pending files.
func (r *TaskReconciler) Abandon() {
	if !r.Loaded() {
		return
	}
	r.draft = DraftFromTask(r.persisted)
	r.phases.Revert()
	r.uploads.Reset()
}

// Dirty reports whether the session holds unsaved task fields, phase toggles
// or pending files.
func (r *TaskReconciler) Dirty() bool {
	if !r.Loaded() {
		return false
	}
	return len(DiffTask(r.persisted, r.draft)) > 0 || r.phases.Dirty() || r.uploads.HasPending()
}

// PendingAmount is the part of the draft service amount not covered by phases.
func (r *TaskReconciler) PendingAmount() float64 {
	if !r.Loaded() {
		return 0
	}
	return r.phases.PendingAmount(r.draft.ServiceAmount)
}

// RenderInvoice allocates the phase's invoice number if needed, validates the
// renderer input and returns the rendered PDF.
func (r *TaskReconciler) RenderInvoice(ctx context.Context, phaseIndex int) (pdf []byte, err error) {
	fields := map[string]any{"index": phaseIndex}
	defer observe(ctx, r.observer, UseCaseInvoiceRender, time.Now(), fields, &err)

	doc, err := r.InvoiceDocument(ctx, phaseIndex)
	if err != nil {
		return nil, err
	}
	fields["invoice_number"] = doc.InvoiceNumber
	if r.renderer == nil {
		return nil, gateway.ErrRendererUnavailable
	}
	pdf, err = r.renderer.RenderInvoice(ctx, *doc)
	if err != nil {
		return nil, fmt.Errorf("rendering invoice %s: %w", doc.InvoiceNumber, err)
	}
	return pdf, nil
}

// InvoiceDocument assembles and validates the renderer input for a phase,
// allocating its invoice number first when missing.
func (r *TaskReconciler) InvoiceDocument(ctx context.Context, phaseIndex int) (*domain.InvoiceDocument, error) {
	if !r.Loaded() {
		return nil, ErrNotLoaded
	}
	number, err := r.phases.AllocateInvoice(ctx, phaseIndex)
	if err != nil {
		return nil, err
	}
	phase, err := r.phases.Phase(phaseIndex)
	if err != nil {
		return nil, err
	}

	doc := &domain.InvoiceDocument{
		InvoiceNumber: number,
		IssuedOn:      r.cfg.Now(),
		Phase:         phase,
		Task:          *r.persisted.Clone(),
	}
	doc.Task.Phases = nil
	doc.Task.Documents = nil
	if r.persisted.Customer != nil {
		doc.Customer = *r.persisted.Customer
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
