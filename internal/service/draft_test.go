package service

import (
	"testing"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
	"github.com/alexanderramin/casework/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDiffTask(t *testing.T) {
	task := testutil.NewTestTask("Visa", testutil.WithServiceAmount(300))
	draft := DraftFromTask(task)
	assert.Empty(t, DiffTask(task, draft))

	draft.ServiceAmount = 450
	draft.DueDate = datePtr(2025, time.December, 1)
	changes := DiffTask(task, draft)

	fields := make([]string, len(changes))
	for i, c := range changes {
		fields[i] = c.Field
	}
	assert.Equal(t, []string{"service_amount", "due_date"}, fields)
	assert.Equal(t, 300.0, changes[0].From)
	assert.Equal(t, 450.0, changes[0].To)
}

func TestDraftFromTaskCopiesDueDate(t *testing.T) {
	due := testutil.Date(2025, time.May, 5)
	task := testutil.NewTestTask("Visa", testutil.WithTaskDueDate(due))
	draft := DraftFromTask(task)

	*draft.DueDate = draft.DueDate.AddDate(0, 0, 1)
	assert.Equal(t, 5, task.DueDate.Day(), "draft never aliases the task")
}

func TestDiffPhases(t *testing.T) {
	base := []domain.PaymentPhase{
		*testutil.NewTestPhase("t", "A", 100),
		*testutil.NewTestPhase("t", "B", 200),
	}
	draft := domain.ClonePhases(base)
	assert.Empty(t, DiffPhases(base, draft))

	draft[1].Status = domain.PhasePaid
	changes := DiffPhases(base, draft)
	assert.Equal(t, []PhaseChange{{Index: 1, ID: base[1].ID, Fields: []string{"status"}}}, changes)
}
