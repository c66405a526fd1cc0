package service

import (
	"github.com/alexanderramin/casework/internal/domain"
)

// Default upload ceilings.
const (
	DefaultMaxFileBytes      int64 = 5 << 20
	DefaultMaxAggregateBytes int64 = 10 << 20
)

// SizeBudget holds the pending file of each document slot and enforces the
// per-file and aggregate ceilings on them.
type SizeBudget struct {
	maxFile      int64
	maxAggregate int64
	pending      map[string]*domain.PendingFile
}

// NewSizeBudget creates a budget; non-positive limits fall back to the defaults.
func NewSizeBudget(maxFile, maxAggregate int64) *SizeBudget {
	if maxFile <= 0 {
		maxFile = DefaultMaxFileBytes
	}
	if maxAggregate <= 0 {
		maxAggregate = DefaultMaxAggregateBytes
	}
	return &SizeBudget{
		maxFile:      maxFile,
		maxAggregate: maxAggregate,
		pending:      map[string]*domain.PendingFile{},
	}
}

// Admit records file as slot's pending file, replacing any previous one.
// A nil file clears the slot and always succeeds.
//
// The aggregate ceiling only applies once another slot holds a pending file,
// and it is checked before the per-file ceiling so a second file pushing the
// batch over the total is reported as an aggregate rejection.
func (b *SizeBudget) Admit(slot string, file *domain.PendingFile) error {
	if file == nil {
		delete(b.pending, slot)
		return nil
	}

	others, count := b.othersTotal(slot)
	if count > 0 && others+file.Size > b.maxAggregate {
		return domain.NewValidationError(slot, domain.ReasonAggregateLimit,
			"%s would bring pending uploads to %s, above the %s limit",
			file.Name, formatBytes(others+file.Size), formatBytes(b.maxAggregate))
	}
	if file.Size > b.maxFile {
		return domain.NewValidationError(slot, domain.ReasonPerFileLimit,
			"%s is %s, above the %s per-file limit",
			file.Name, formatBytes(file.Size), formatBytes(b.maxFile))
	}

	b.pending[slot] = file
	return nil
}

// Clear drops slot's pending file.
func (b *SizeBudget) Clear(slot string) {
	delete(b.pending, slot)
}

// Reset drops every pending file.
func (b *SizeBudget) Reset() {
	clear(b.pending)
}

func (b *SizeBudget) Pending(slot string) (*domain.PendingFile, bool) {
	f, ok := b.pending[slot]
	return f, ok
}

// Total is the combined size of all pending files.
func (b *SizeBudget) Total() int64 {
	total, _ := b.othersTotal("")
	return total
}

func (b *SizeBudget) Count() int {
	return len(b.pending)
}

func (b *SizeBudget) othersTotal(exclude string) (int64, int) {
	var total int64
	var count int
	for slot, f := range b.pending {
		if slot == exclude {
			continue
		}
		total += f.Size
		count++
	}
	return total, count
}
