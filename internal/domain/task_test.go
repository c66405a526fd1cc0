package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingAmount_NeverNegative(t *testing.T) {
	phases := []PaymentPhase{{Name: "A", Amount: 100}}
	assert.Equal(t, 200.0, PendingAmount(300, phases))

	phases = append(phases, PaymentPhase{Name: "B", Amount: 250})
	assert.Equal(t, 0.0, PendingAmount(300, phases))
}

func TestTask_ValidateFields(t *testing.T) {
	task := &Task{Title: "Visa", CaseTypeID: "ct-1", ServiceAmount: 10}
	require.NoError(t, task.ValidateFields())

	task.Title = " "
	err := task.ValidateFields()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "title", ve.Field)

	task.Title = "Visa"
	task.ServiceAmount = -1
	assert.ErrorIs(t, task.ValidateFields(), ErrValidation)
}

func TestTask_CloneIsDeep(t *testing.T) {
	orig := &Task{
		ID:     "t-1",
		Phases: []PaymentPhase{{Name: "A", Amount: 1, PaymentDate: &testDue}},
	}
	c := orig.Clone()
	c.Phases[0].Name = "changed"
	*c.Phases[0].PaymentDate = testDue.AddDate(1, 0, 0)

	assert.Equal(t, "A", orig.Phases[0].Name)
	assert.Equal(t, testDue, *orig.Phases[0].PaymentDate)
}

func TestOpError_UnwrapsKindAndCause(t *testing.T) {
	err := NewOpError(ErrUploadFailed, "upload", "Passport", ErrNotFound)
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Passport")
}
