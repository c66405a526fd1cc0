package service

import (
	"errors"
	"testing"

	"github.com/alexanderramin/casework/internal/domain"
	"github.com/alexanderramin/casework/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rejectionReason(t *testing.T, err error) string {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve.Reason
}

func TestSizeBudget_SingleFileUnderLimitAdmitted(t *testing.T) {
	b := NewSizeBudget(0, 0)
	require.NoError(t, b.Admit("Passport", testutil.NewTestFile("passport.pdf", 4*testutil.MiB)))

	f, ok := b.Pending("Passport")
	require.True(t, ok)
	assert.Equal(t, int64(4*testutil.MiB), f.Size)
	assert.Equal(t, int64(4*testutil.MiB), b.Total())
}

func TestSizeBudget_PerFileLimit(t *testing.T) {
	b := NewSizeBudget(0, 0)
	err := b.Admit("Passport", testutil.NewTestFile("big.pdf", 6*testutil.MiB))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.ReasonPerFileLimit, rejectionReason(t, err))
	assert.Zero(t, b.Count())
}

func TestSizeBudget_ExactLimitsAdmitted(t *testing.T) {
	b := NewSizeBudget(0, 0)
	require.NoError(t, b.Admit("A", testutil.NewTestFile("a.pdf", 5*testutil.MiB)))
	require.NoError(t, b.Admit("B", testutil.NewTestFile("b.pdf", 5*testutil.MiB)))
	assert.Equal(t, int64(10*testutil.MiB), b.Total())
}

func TestSizeBudget_AggregateLimitOnSecondFile(t *testing.T) {
	b := NewSizeBudget(0, 0)
	require.NoError(t, b.Admit("A", testutil.NewTestFile("a.pdf", 5*testutil.MiB)))

	err := b.Admit("B", testutil.NewTestFile("b.pdf", 6*testutil.MiB))
	require.Error(t, err)
	assert.Equal(t, domain.ReasonAggregateLimit, rejectionReason(t, err))

	_, ok := b.Pending("B")
	assert.False(t, ok, "rejected file is not recorded")
	assert.Equal(t, int64(5*testutil.MiB), b.Total())
}

func TestSizeBudget_SixThenFiveRejectsSecondForAggregate(t *testing.T) {
	// Per-file ceiling raised so a 6 MiB file can be pending at all.
	b := NewSizeBudget(8*testutil.MiB, 10*testutil.MiB)
	require.NoError(t, b.Admit("A", testutil.NewTestFile("a.pdf", 6*testutil.MiB)))

	err := b.Admit("B", testutil.NewTestFile("b.pdf", 5*testutil.MiB))
	require.Error(t, err)
	assert.Equal(t, domain.ReasonAggregateLimit, rejectionReason(t, err))
}

func TestSizeBudget_ReplacingSlotExcludesItsOwnFile(t *testing.T) {
	b := NewSizeBudget(0, 0)
	require.NoError(t, b.Admit("A", testutil.NewTestFile("a1.pdf", 5*testutil.MiB)))
	require.NoError(t, b.Admit("B", testutil.NewTestFile("b.pdf", 4*testutil.MiB)))

	// 4 + 5 stays within 10 once A's previous file no longer counts.
	require.NoError(t, b.Admit("A", testutil.NewTestFile("a2.pdf", 5*testutil.MiB)))
	f, _ := b.Pending("A")
	assert.Equal(t, "a2.pdf", f.Name)
	assert.Equal(t, 2, b.Count())
}

func TestSizeBudget_ClearFreesAggregate(t *testing.T) {
	b := NewSizeBudget(0, 0)
	require.NoError(t, b.Admit("A", testutil.NewTestFile("a.pdf", 5*testutil.MiB)))
	require.NoError(t, b.Admit("A", nil))
	require.NoError(t, b.Admit("Z", nil), "clearing an empty slot succeeds")

	assert.Zero(t, b.Total())
	require.NoError(t, b.Admit("B", testutil.NewTestFile("b.pdf", 5*testutil.MiB)))
}
