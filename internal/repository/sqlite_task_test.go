package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
	"github.com/alexanderramin/casework/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)
	ctx := context.Background()

	due := testutil.Date(2025, time.June, 30)
	task := testutil.NewTestTask("Visa renewal",
		testutil.WithServiceAmount(300),
		testutil.WithTaskDueDate(due),
	)
	require.NoError(t, repo.Create(ctx, task))

	fetched, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Visa renewal", fetched.Title)
	assert.Equal(t, 300.0, fetched.ServiceAmount)
	assert.Equal(t, domain.TaskOpen, fetched.Status)
	assert.Empty(t, fetched.CustomerID)
	require.NotNil(t, fetched.DueDate)
	assert.Equal(t, "2025-06-30", fetched.DueDate.Format("2006-01-02"))
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskRepo_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)
	customers := NewSQLiteCustomerRepo(db)
	ctx := context.Background()

	cust := testutil.NewTestCustomer("Acme")
	require.NoError(t, customers.Upsert(ctx, cust))

	task := testutil.NewTestTask("Filing")
	require.NoError(t, repo.Create(ctx, task))

	task.Title = "Filing (amended)"
	task.CustomerID = cust.ID
	task.Status = domain.TaskInProgress
	task.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, task))

	fetched, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Filing (amended)", fetched.Title)
	assert.Equal(t, cust.ID, fetched.CustomerID)
	assert.Equal(t, domain.TaskInProgress, fetched.Status)
}

func TestTaskRepo_Update_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)

	err := repo.Update(context.Background(), testutil.NewTestTask("Ghost"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskRepo_List(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTaskRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestTask("First")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTask("Second")))

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "First", tasks[0].Title)
	assert.Equal(t, "Second", tasks[1].Title)
}

func TestCustomerRepo_Upsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCustomerRepo(db)
	ctx := context.Background()

	cust := testutil.NewTestCustomer("Jordan Lee")
	require.NoError(t, repo.Upsert(ctx, cust))

	cust.Phone = "555-0100"
	require.NoError(t, repo.Upsert(ctx, cust))

	fetched, err := repo.GetByID(ctx, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Lee", fetched.Name)
	assert.Equal(t, "555-0100", fetched.Phone)

	_, err = repo.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
