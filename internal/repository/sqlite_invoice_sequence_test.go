package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/casework/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceSequenceRepo_LatestAndAdvance(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteInvoiceSequenceRepo(db)
	ctx := context.Background()

	_, ok, err := repo.Latest(ctx, "default")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Advance(ctx, "default", "ECSI-25-0001"))
	require.NoError(t, repo.Advance(ctx, "default", "ECSI-25-0002"))
	require.NoError(t, repo.Advance(ctx, "branch", "BR-25-0007"))

	latest, ok, err := repo.Latest(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ECSI-25-0002", latest)

	latest, _, err = repo.Latest(ctx, "branch")
	require.NoError(t, err)
	assert.Equal(t, "BR-25-0007", latest)
}
