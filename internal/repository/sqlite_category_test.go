package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/casework/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepo_CreateIsIdempotentPerCaseType(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCategoryRepo(db)
	ctx := context.Background()

	passport, err := repo.Create(ctx, "immigration", "Passport")
	require.NoError(t, err)
	assert.Equal(t, int64(1), passport, "ids start at 1")

	again, err := repo.Create(ctx, "immigration", "Passport")
	require.NoError(t, err)
	assert.Equal(t, passport, again)

	otherScope, err := repo.Create(ctx, "tax", "Passport")
	require.NoError(t, err)
	assert.NotEqual(t, passport, otherScope)

	cats, err := repo.ListByCaseType(ctx, "immigration")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Passport", cats[0].Label)
	assert.Equal(t, "immigration", cats[0].CaseTypeID)
}

func TestCategoryRepo_ListEmpty(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCategoryRepo(db)

	cats, err := repo.ListByCaseType(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, cats)
}
