package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
)

// PhaseStore owns a task's payment phases as two snapshots: persisted, the
// last server truth, and draft, carrying local status toggles. Creates and
// edits go to the system of record first; local state changes only after the
// remote call succeeds.
type PhaseStore struct {
	taskID    string
	writer    PhaseWriter
	allocator *InvoiceAllocator
	refresh   RefreshFunc
	actor     string
	observer  UseCaseObserver

	persisted []domain.PaymentPhase
	draft     []domain.PaymentPhase
}

// NewPhaseStore creates an empty store. refresh is invoked after a create so
// server-assigned ids replace optimistic state; it may be nil.
func NewPhaseStore(taskID string, writer PhaseWriter, allocator *InvoiceAllocator, refresh RefreshFunc, actor string, observers ...UseCaseObserver) *PhaseStore {
	return &PhaseStore{
		taskID:    taskID,
		writer:    writer,
		allocator: allocator,
		refresh:   refresh,
		actor:     actor,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// Load replaces the persisted snapshot with phases. Status toggles on phases
// whose server state did not change are carried over into the new draft.
func (s *PhaseStore) Load(phases []domain.PaymentPhase) {
	toggled := map[string]domain.PhaseStatus{}
	for _, c := range DiffPhases(s.persisted, s.draft) {
		base := s.persisted[c.Index]
		toggled[base.ID] = s.draft[c.Index].Status
	}
	old := map[string]domain.PaymentPhase{}
	for _, p := range s.persisted {
		old[p.ID] = p
	}

	s.persisted = make([]domain.PaymentPhase, len(phases))
	for i, p := range phases {
		p.Status = domain.NormalizePhaseStatus(string(p.Status))
		s.persisted[i] = p
	}
	s.persisted = domain.ClonePhases(s.persisted)
	s.draft = domain.ClonePhases(s.persisted)

	for i, p := range s.draft {
		st, ok := toggled[p.ID]
		if ok && old[p.ID].Status == p.Status {
			s.draft[i].Status = st
		}
	}
}

// Phases returns a copy of the draft phases.
func (s *PhaseStore) Phases() []domain.PaymentPhase {
	return domain.ClonePhases(s.draft)
}

// Persisted returns a copy of the last server snapshot.
func (s *PhaseStore) Persisted() []domain.PaymentPhase {
	return domain.ClonePhases(s.persisted)
}

func (s *PhaseStore) Len() int {
	return len(s.draft)
}

// Phase returns a copy of the draft phase at index.
func (s *PhaseStore) Phase(index int) (domain.PaymentPhase, error) {
	if err := s.checkIndex(index); err != nil {
		return domain.PaymentPhase{}, err
	}
	return domain.ClonePhases(s.draft[index : index+1])[0], nil
}

// AddDraft validates form and creates the phase remotely. A name equal to an
// existing phase's name, ignoring case, is rejected before any request.
func (s *PhaseStore) AddDraft(ctx context.Context, form domain.PhaseForm) (err error) {
	defer observe(ctx, s.observer, UseCasePhaseAdd, time.Now(), map[string]any{
		"task_id":    s.taskID,
		"phase_name": form.Name,
	}, &err)

	if err := form.Validate(); err != nil {
		return err
	}
	if err := s.checkDuplicate(form.Name, -1); err != nil {
		return err
	}

	p := domain.PaymentPhase{TaskID: s.taskID, CreatedBy: s.actor, UpdatedBy: s.actor}
	form.ApplyTo(&p)
	if err := s.writer.CreatePaymentPhase(ctx, s.taskID, &p); err != nil {
		return domain.NewOpError(domain.ErrPersistence, "create_payment_phase", p.Name, err)
	}

	if s.refresh == nil {
		s.persisted = append(s.persisted, p)
		s.draft = append(s.draft, domain.ClonePhases([]domain.PaymentPhase{p})...)
		return nil
	}
	if err := s.refresh(ctx); err != nil {
		return fmt.Errorf("refreshing task after creating phase %q: %w", p.Name, err)
	}
	return nil
}

// SaveEdit validates form and sends the full phase payload. The phase being
// edited is excluded from the duplicate-name check.
func (s *PhaseStore) SaveEdit(ctx context.Context, index int, form domain.PhaseForm) (err error) {
	fields := map[string]any{"task_id": s.taskID, "index": index}
	defer observe(ctx, s.observer, UseCasePhaseSaveEdit, time.Now(), fields, &err)

	if err := s.checkIndex(index); err != nil {
		return err
	}
	if err := form.Validate(); err != nil {
		return err
	}
	if err := s.checkDuplicate(form.Name, index); err != nil {
		return err
	}

	p := domain.ClonePhases(s.persisted[index : index+1])[0]
	fields["phase_id"] = p.ID
	// A status toggled by MarkStatus rides along unless the form sets one.
	p.Status = s.draft[index].Status
	form.ApplyTo(&p)
	p.UpdatedBy = s.actor
	if err := s.writer.UpdatePaymentPhase(ctx, &p); err != nil {
		return domain.NewOpError(domain.ErrPersistence, "update_payment_phase", p.ID, err)
	}

	s.persisted[index] = p
	s.draft[index] = domain.ClonePhases([]domain.PaymentPhase{p})[0]
	return nil
}

// MarkStatus changes the draft status only; SaveEdit or SaveDirty sends it.
func (s *PhaseStore) MarkStatus(index int, status domain.PhaseStatus) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if status == "" {
		status = domain.PhasePending
	}
	if !status.Valid() {
		return domain.NewValidationError("status", "enum", "status %q must be pending or paid", status)
	}
	s.draft[index].Status = status
	return nil
}

// SaveDirty sends every draft phase that differs from its persisted
// snapshot. Each phase is saved independently; failures are joined.
func (s *PhaseStore) SaveDirty(ctx context.Context) error {
	var errs []error
	for _, c := range DiffPhases(s.persisted, s.draft) {
		form := domain.FormFromPhase(s.draft[c.Index])
		if err := s.SaveEdit(ctx, c.Index, form); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dirty reports whether any draft phase differs from the persisted snapshot.
func (s *PhaseStore) Dirty() bool {
	return len(DiffPhases(s.persisted, s.draft)) > 0
}

// Revert discards draft toggles.
func (s *PhaseStore) Revert() {
	s.draft = domain.ClonePhases(s.persisted)
}

// PendingAmount is max(0, serviceAmount - sum of phase amounts).
func (s *PhaseStore) PendingAmount(serviceAmount float64) float64 {
	return domain.PendingAmount(serviceAmount, s.draft)
}

// AllocateInvoice returns the invoice number of the phase at index,
// allocating one if the phase has none.
func (s *PhaseStore) AllocateInvoice(ctx context.Context, index int) (string, error) {
	if err := s.checkIndex(index); err != nil {
		return "", err
	}
	p := s.persisted[index]
	number, err := s.allocator.Allocate(ctx, &p)
	if err != nil {
		return "", err
	}
	s.persisted[index].InvoiceNumber = number
	s.draft[index].InvoiceNumber = number
	return number, nil
}

// AvailableSuggestions lists the suggested phase names not used yet.
func (s *PhaseStore) AvailableSuggestions() []string {
	var out []string
	for _, name := range domain.PhaseNameSuggestions {
		if s.checkDuplicate(name, -1) == nil {
			out = append(out, name)
		}
	}
	return out
}

func (s *PhaseStore) checkIndex(index int) error {
	if index < 0 || index >= len(s.draft) {
		return domain.NewValidationError("phase", "index", "no payment phase at position %d", index+1)
	}
	return nil
}

func (s *PhaseStore) checkDuplicate(name string, exclude int) error {
	for i, p := range s.persisted {
		if i == exclude {
			continue
		}
		if domain.SamePhaseName(p.Name, name) {
			return domain.NewValidationError("phase_name", "duplicate", "a phase named %q already exists", p.Name)
		}
	}
	return nil
}
