package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
)

// CategoryResolver maps document labels of one case type to category ids,
// creating categories on demand. Membership in the mapping, not the id value,
// decides whether a label is resolved: id 0 is a valid result.
//
// It is safe for concurrent use; network calls run without the lock held.
type CategoryResolver struct {
	catalog    CategoryCatalog
	caseTypeID string
	observer   UseCaseObserver

	mu  sync.Mutex
	ids map[string]int64
}

func NewCategoryResolver(catalog CategoryCatalog, caseTypeID string, observers ...UseCaseObserver) *CategoryResolver {
	return &CategoryResolver{
		catalog:    catalog,
		caseTypeID: caseTypeID,
		observer:   useCaseObserverOrNoop(observers),
		ids:        map[string]int64{domain.OtherLabel: domain.UncategorizedID},
	}
}

// Seed replaces the mapping with the case type's catalog. "Other" maps to the
// uncategorized id unless the catalog carries its own entry.
func (r *CategoryResolver) Seed(ctx context.Context) error {
	cats, err := r.catalog.FetchDocumentCategories(ctx, r.caseTypeID)
	if err != nil {
		return fmt.Errorf("fetching document categories for %s: %w", r.caseTypeID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = make(map[string]int64, len(cats)+1)
	for label, id := range cats {
		r.ids[label] = id
	}
	if _, ok := r.ids[domain.OtherLabel]; !ok {
		r.ids[domain.OtherLabel] = domain.UncategorizedID
	}
	return nil
}

// CaseTypeID is the scope every lookup and creation is bound to.
func (r *CategoryResolver) CaseTypeID() string {
	return r.caseTypeID
}

// Lookup reports the id mapped to label without creating anything.
func (r *CategoryResolver) Lookup(label string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.ids[label]
	return id, ok
}

// Labels lists the selectable labels alphabetically with "Other" last.
func (r *CategoryResolver) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	labels := make([]string, 0, len(r.ids))
	for l := range r.ids {
		if l != domain.OtherLabel {
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)
	return append(labels, domain.OtherLabel)
}

// Resolve returns the category id for label, creating the category when the
// label is not mapped yet. Creation failures are *domain.OpError of kind
// domain.ErrCategoryCreationFailed.
func (r *CategoryResolver) Resolve(ctx context.Context, label string) (int64, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, domain.NewValidationError("label", "required", "document label is required")
	}
	if id, ok := r.Lookup(label); ok {
		return id, nil
	}
	return r.create(ctx, label)
}

// ResolveCustom creates (or reuses) a catalog label for a user-named "Other"
// document. The "Other" placeholder itself stays mapped.
func (r *CategoryResolver) ResolveCustom(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, domain.NewValidationError("custom_name", "required", "a name is required for %q documents", domain.OtherLabel)
	}
	if strings.EqualFold(name, domain.OtherLabel) {
		return 0, domain.NewValidationError("custom_name", "reserved", "%q cannot be used as a document name", domain.OtherLabel)
	}
	if id, ok := r.Lookup(name); ok {
		return id, nil
	}
	return r.create(ctx, name)
}

func (r *CategoryResolver) create(ctx context.Context, label string) (id int64, err error) {
	defer observe(ctx, r.observer, UseCaseCategoryResolve, time.Now(), map[string]any{
		"case_type_id": r.caseTypeID,
		"label":        label,
	}, &err)

	id, err = r.catalog.CreateDocumentCategory(ctx, r.caseTypeID, label)
	if err != nil {
		return 0, domain.NewOpError(domain.ErrCategoryCreationFailed, "create_document_category", label, err)
	}

	r.mu.Lock()
	r.ids[label] = id
	if _, ok := r.ids[domain.OtherLabel]; !ok {
		r.ids[domain.OtherLabel] = domain.UncategorizedID
	}
	r.mu.Unlock()
	return id, nil
}
