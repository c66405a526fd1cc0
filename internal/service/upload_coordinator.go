package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DocumentSlot is one document label an edit session may upload against.
type DocumentSlot struct {
	Label      string
	CustomName string
	Visible    bool
	State      domain.SlotState
	File       *domain.PendingFile
	LastErr    error
}

// Selected reports whether the slot participates in the next upload batch.
func (s DocumentSlot) Selected() bool {
	return s.State != domain.SlotUnselected && s.State != domain.SlotUploaded
}

// UploadResult is the outcome of one document in a batch.
type UploadResult struct {
	Label      string
	CategoryID int64
	Document   *domain.Document
	Err        error
}

// UploadReport aggregates a batch. Items succeed or fail independently.
type UploadReport struct {
	Results   []UploadResult
	Succeeded int
	Failed    int
}

// Success reports whether at least one upload in the batch went through.
func (r *UploadReport) Success() bool {
	return r != nil && r.Succeeded > 0
}

// Err joins the per-item failures, or returns nil.
func (r *UploadReport) Err() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// UploadCoordinator owns the document slots of one task, admits files
// through a SizeBudget and submits them in concurrent batches.
// Slot methods are not safe for concurrent use; SubmitAll fans out internally.
type UploadCoordinator struct {
	taskID         string
	store          DocumentStore
	resolver       *CategoryResolver
	budget         *SizeBudget
	refresh        RefreshFunc
	actor          string
	defaultVisible bool
	observer       UseCaseObserver

	slots    map[string]*DocumentSlot
	order    []string
	uploaded []domain.Document
}

var errNoDocument = errors.New("system of record returned no document")

// CoordinatorConfig carries the per-session settings of an UploadCoordinator.
type CoordinatorConfig struct {
	Actor          string
	DefaultVisible bool
	Refresh        RefreshFunc
}

func NewUploadCoordinator(taskID string, store DocumentStore, resolver *CategoryResolver, budget *SizeBudget, cfg CoordinatorConfig, observers ...UseCaseObserver) *UploadCoordinator {
	return &UploadCoordinator{
		taskID:         taskID,
		store:          store,
		resolver:       resolver,
		budget:         budget,
		refresh:        cfg.Refresh,
		actor:          cfg.Actor,
		defaultVisible: cfg.DefaultVisible,
		observer:       useCaseObserverOrNoop(observers),
		slots:          map[string]*DocumentSlot{},
	}
}

// Load replaces the list of already-uploaded documents. Slots and their
// pending files are kept.
func (c *UploadCoordinator) Load(docs []domain.Document) {
	c.uploaded = append([]domain.Document(nil), docs...)
}

// SetResolver switches the category catalog used by later submissions.
func (c *UploadCoordinator) SetResolver(resolver *CategoryResolver) {
	c.resolver = resolver
}

// Uploaded returns the documents the system of record holds for the task.
func (c *UploadCoordinator) Uploaded() []domain.Document {
	return append([]domain.Document(nil), c.uploaded...)
}

// SelectDocument toggles whether label takes part in upload. Deselecting
// drops the pending file, and for "Other" also the custom name.
func (c *UploadCoordinator) SelectDocument(label string, selected bool) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return domain.NewValidationError("label", "required", "document label is required")
	}

	slot, ok := c.slots[label]
	if !selected {
		if !ok {
			return nil
		}
		c.budget.Clear(label)
		slot.File = nil
		slot.LastErr = nil
		slot.State = domain.SlotUnselected
		if label == domain.OtherLabel {
			slot.CustomName = ""
		}
		return nil
	}

	if !ok {
		slot = &DocumentSlot{Label: label, Visible: c.defaultVisible}
		c.slots[label] = slot
		c.order = append(c.order, label)
	}
	if !slot.Selected() {
		slot.State = domain.SlotSelected
		slot.LastErr = nil
	}
	return nil
}

// SetCustomName names the document uploaded under the "Other" label.
func (c *UploadCoordinator) SetCustomName(name string) error {
	slot, err := c.selectedSlot(domain.OtherLabel)
	if err != nil {
		return err
	}
	slot.CustomName = strings.TrimSpace(name)
	return nil
}

// SetVisibility sets whether the uploaded document is visible to the customer.
func (c *UploadCoordinator) SetVisibility(label string, visible bool) error {
	slot, err := c.selectedSlot(label)
	if err != nil {
		return err
	}
	slot.Visible = visible
	return nil
}

// AttachFile admits file as label's pending file. A nil file detaches.
// Rejections are *domain.ValidationError with a size-limit reason, and leave
// the slot's previous file in place.
func (c *UploadCoordinator) AttachFile(label string, file *domain.PendingFile) error {
	slot, err := c.selectedSlot(label)
	if err != nil {
		return err
	}
	if err := c.budget.Admit(label, file); err != nil {
		return err
	}
	slot.File = file
	slot.LastErr = nil
	if file == nil {
		slot.State = domain.SlotSelected
	} else {
		slot.State = domain.SlotFilePending
	}
	return nil
}

// Slot returns a copy of label's slot.
func (c *UploadCoordinator) Slot(label string) (DocumentSlot, bool) {
	slot, ok := c.slots[label]
	if !ok {
		return DocumentSlot{Label: label, State: domain.SlotUnselected}, false
	}
	return *slot, true
}

// Slots returns copies of all slots in the order they were first selected.
func (c *UploadCoordinator) Slots() []DocumentSlot {
	out := make([]DocumentSlot, 0, len(c.order))
	for _, label := range c.order {
		out = append(out, *c.slots[label])
	}
	return out
}

// HasPending reports whether any selected slot holds a file.
func (c *UploadCoordinator) HasPending() bool {
	return c.budget.Count() > 0
}

func (c *UploadCoordinator) PendingBytes() int64 {
	return c.budget.Total()
}

// Reset drops every slot and pending file.
func (c *UploadCoordinator) Reset() {
	c.budget.Reset()
	clear(c.slots)
	c.order = nil
}

type uploadJob struct {
	slot   *DocumentSlot
	file   *domain.PendingFile
	custom string
}

// SubmitAll uploads every selected slot holding a pending file. Each document
// resolves its category and uploads on its own goroutine; one document's
// failure never stops another. Successful slots become uploaded and lose their
// file; failed slots return to file pending. When anything succeeded the task
// is re-fetched. The returned error is non-nil only if that re-fetch fails.
func (c *UploadCoordinator) SubmitAll(ctx context.Context) (report *UploadReport, err error) {
	fields := map[string]any{"task_id": c.taskID}
	defer observe(ctx, c.observer, UseCaseSubmitAll, time.Now(), fields, &err)

	var jobs []uploadJob
	for _, label := range c.order {
		slot := c.slots[label]
		if !slot.Selected() || slot.File == nil {
			continue
		}
		slot.State = domain.SlotUploading
		jobs = append(jobs, uploadJob{slot: slot, file: slot.File, custom: slot.CustomName})
	}

	results := make([]UploadResult, len(jobs))
	var g errgroup.Group
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = c.uploadOne(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	report = &UploadReport{Results: results}
	for i, res := range results {
		slot := jobs[i].slot
		if res.Err != nil {
			report.Failed++
			slot.State = domain.SlotFilePending
			slot.LastErr = res.Err
			continue
		}
		report.Succeeded++
		c.budget.Clear(slot.Label)
		slot.File = nil
		slot.LastErr = nil
		slot.State = domain.SlotUploaded
		if slot.Label == domain.OtherLabel {
			// A fresh "Other" slot stays available for further custom documents.
			slot.CustomName = ""
			slot.State = domain.SlotUnselected
		}
		c.uploaded = append(c.uploaded, *res.Document)
	}
	fields["succeeded"] = report.Succeeded
	fields["failed"] = report.Failed

	if report.Succeeded > 0 && c.refresh != nil {
		if err := c.refresh(ctx); err != nil {
			return report, fmt.Errorf("refreshing task after upload: %w", err)
		}
	}
	return report, nil
}

func (c *UploadCoordinator) uploadOne(ctx context.Context, job uploadJob) (res UploadResult) {
	label := job.slot.Label
	res.Label = label
	if label == domain.OtherLabel {
		res.Label = job.custom
	}

	var err error
	defer observe(ctx, c.observer, UseCaseDocumentUpload, time.Now(), map[string]any{
		"task_id": c.taskID,
		"label":   res.Label,
		"bytes":   job.file.Size,
	}, &err)

	var categoryID int64
	if label == domain.OtherLabel {
		categoryID, err = c.resolver.ResolveCustom(ctx, job.custom)
	} else {
		categoryID, err = c.resolver.Resolve(ctx, label)
	}
	if err != nil {
		res.Err = err
		return res
	}
	res.CategoryID = categoryID

	doc, err := c.store.UploadDocument(ctx, domain.UploadRequest{
		TaskID:     c.taskID,
		CategoryID: categoryID,
		Label:      res.Label,
		File:       job.file,
		Visible:    job.slot.Visible,
		UploadedBy: c.actor,
	})
	if err == nil && doc == nil {
		err = errNoDocument
	}
	if err != nil {
		err = domain.NewOpError(domain.ErrUploadFailed, "upload_document", res.Label, err)
		res.Err = err
		return res
	}
	res.Document = doc
	return res
}

// Remove deletes an uploaded document and re-fetches the task.
func (c *UploadCoordinator) Remove(ctx context.Context, documentID string) (err error) {
	defer observe(ctx, c.observer, UseCaseDocumentDelete, time.Now(), map[string]any{
		"task_id":     c.taskID,
		"document_id": documentID,
	}, &err)

	if err := c.store.DeleteDocument(ctx, documentID); err != nil {
		return domain.NewOpError(domain.ErrPersistence, "delete_document", documentID, err)
	}
	if c.refresh != nil {
		return c.refresh(ctx)
	}
	for i, d := range c.uploaded {
		if d.ID == documentID {
			c.uploaded = append(c.uploaded[:i], c.uploaded[i+1:]...)
			break
		}
	}
	return nil
}

func (c *UploadCoordinator) selectedSlot(label string) (*DocumentSlot, error) {
	slot, ok := c.slots[label]
	if !ok || !slot.Selected() {
		return nil, domain.NewValidationError("label", "not_selected", "document %q is not selected", label)
	}
	return slot, nil
}
