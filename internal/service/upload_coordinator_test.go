package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/casework/internal/domain"
	"github.com/alexanderramin/casework/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCoordinator(t *testing.T, fake *testutil.FakeRecordSystem) (*UploadCoordinator, *domain.Task) {
	t.Helper()
	task := testutil.NewTestTask("Visa")
	fake.PutTask(task)

	resolver := NewCategoryResolver(fake, task.CaseTypeID)
	require.NoError(t, resolver.Seed(context.Background()))

	var c *UploadCoordinator
	refresh := func(ctx context.Context) error {
		fetched, err := fake.FetchTask(ctx, task.ID)
		if err != nil {
			return err
		}
		c.Load(fetched.Documents)
		return nil
	}
	c = NewUploadCoordinator(task.ID, fake, resolver, NewSizeBudget(0, 0),
		CoordinatorConfig{Actor: "clerk", DefaultVisible: true, Refresh: refresh})
	return c, task
}

func attach(t *testing.T, c *UploadCoordinator, label string, size int) {
	t.Helper()
	require.NoError(t, c.SelectDocument(label, true))
	require.NoError(t, c.AttachFile(label, testutil.NewTestFile(label+".pdf", size)))
}

func TestUploadCoordinator_SlotStateMachine(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	c, _ := newCoordinator(t, fake)

	slot, ok := c.Slot("Passport")
	assert.False(t, ok)
	assert.Equal(t, domain.SlotUnselected, slot.State)

	require.NoError(t, c.SelectDocument("Passport", true))
	slot, _ = c.Slot("Passport")
	assert.Equal(t, domain.SlotSelected, slot.State)
	assert.True(t, slot.Visible)

	require.NoError(t, c.AttachFile("Passport", testutil.NewTestFile("p.pdf", 1024)))
	slot, _ = c.Slot("Passport")
	assert.Equal(t, domain.SlotFilePending, slot.State)

	require.NoError(t, c.SelectDocument("Passport", false))
	slot, _ = c.Slot("Passport")
	assert.Equal(t, domain.SlotUnselected, slot.State)
	assert.Nil(t, slot.File)
	assert.False(t, c.HasPending())
}

func TestUploadCoordinator_AttachRequiresSelection(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	c, _ := newCoordinator(t, fake)

	err := c.AttachFile("Passport", testutil.NewTestFile("p.pdf", 10))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUploadCoordinator_AttachOverBudgetKeepsPreviousFile(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	c, _ := newCoordinator(t, fake)

	attach(t, c, "Passport", 5*testutil.MiB)
	attach(t, c, "Diploma", 4*testutil.MiB)

	err := c.AttachFile("Diploma", testutil.NewTestFile("huge.pdf", 6*testutil.MiB))
	require.Error(t, err)
	assert.Equal(t, domain.ReasonAggregateLimit, rejectionReason(t, err))

	slot, _ := c.Slot("Diploma")
	assert.Equal(t, "Diploma.pdf", slot.File.Name)
}

func TestUploadCoordinator_DeselectOtherClearsCustomName(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	c, _ := newCoordinator(t, fake)

	require.NoError(t, c.SelectDocument(domain.OtherLabel, true))
	require.NoError(t, c.SetCustomName("Lease"))
	require.NoError(t, c.SelectDocument(domain.OtherLabel, false))

	slot, _ := c.Slot(domain.OtherLabel)
	assert.Empty(t, slot.CustomName)
}

func TestUploadCoordinator_SubmitAllAllSucceed(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	c, _ := newCoordinator(t, fake)

	attach(t, c, "Passport", 1024)
	attach(t, c, "Diploma", 2048)
	require.NoError(t, c.SetVisibility("Diploma", false))

	report, err := c.SubmitAll(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Success())
	assert.Equal(t, 2, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.NoError(t, report.Err())

	assert.False(t, c.HasPending(), "pending files are cleared")
	assert.Len(t, c.Uploaded(), 2)
	assert.Equal(t, 1, fake.Calls(testutil.OpFetchTask), "one re-fetch per batch")

	for _, up := range fake.Uploads() {
		if up.Label == "Diploma" {
			assert.False(t, up.Visible)
		}
		assert.Equal(t, "clerk", up.UploadedBy)
	}
}

func TestUploadCoordinator_CategoryFailureIsolated(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	fake.FailCategory["Diploma"] = errors.New("catalog unavailable")
	c, _ := newCoordinator(t, fake)

	attach(t, c, "Passport", 1024)
	attach(t, c, "Diploma", 1024)

	report, err := c.SubmitAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, report.Success())
	assert.ErrorIs(t, report.Err(), domain.ErrCategoryCreationFailed)

	passport, _ := c.Slot("Passport")
	assert.Equal(t, domain.SlotUploaded, passport.State)

	diploma, _ := c.Slot("Diploma")
	assert.Equal(t, domain.SlotFilePending, diploma.State, "failed slot keeps its file")
	assert.NotNil(t, diploma.File)
	assert.ErrorIs(t, diploma.LastErr, domain.ErrCategoryCreationFailed)

	require.Len(t, fake.Uploads(), 1, "no upload without a resolved category")
	assert.Equal(t, "Passport", fake.Uploads()[0].Label)
}

func TestUploadCoordinator_UploadFailureNoRefetch(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	fake.FailUpload["Passport"] = errors.New("storage full")
	c, _ := newCoordinator(t, fake)

	attach(t, c, "Passport", 1024)

	report, err := c.SubmitAll(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Success())
	assert.Equal(t, 1, report.Failed)
	assert.ErrorIs(t, report.Err(), domain.ErrUploadFailed)
	assert.Zero(t, fake.Calls(testutil.OpFetchTask))
	assert.True(t, c.HasPending())

	var opErr *domain.OpError
	require.True(t, errors.As(report.Results[0].Err, &opErr))
	assert.Equal(t, "Passport", opErr.Subject)
}

func TestUploadCoordinator_OtherUploadsUnderCustomName(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	c, task := newCoordinator(t, fake)

	require.NoError(t, c.SelectDocument(domain.OtherLabel, true))
	require.NoError(t, c.SetCustomName("Lease Agreement"))
	require.NoError(t, c.AttachFile(domain.OtherLabel, testutil.NewTestFile("lease.pdf", 100)))

	report, err := c.SubmitAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Succeeded)
	assert.Equal(t, "Lease Agreement", report.Results[0].Label)
	assert.NotZero(t, report.Results[0].CategoryID)
	assert.True(t, fake.HasCategory(task.CaseTypeID, "Lease Agreement"))

	other, _ := c.Slot(domain.OtherLabel)
	assert.Equal(t, domain.SlotUnselected, other.State, "Other is selectable again")
	assert.Empty(t, other.CustomName)
	require.NoError(t, c.SelectDocument(domain.OtherLabel, true))
}

func TestUploadCoordinator_OtherWithoutNameFails(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	c, _ := newCoordinator(t, fake)

	attach(t, c, domain.OtherLabel, 100)
	report, err := c.SubmitAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.ErrorIs(t, report.Err(), domain.ErrValidation)
	assert.Empty(t, fake.Uploads())
}

func TestUploadCoordinator_NothingPending(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	c, _ := newCoordinator(t, fake)
	require.NoError(t, c.SelectDocument("Passport", true))

	report, err := c.SubmitAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.False(t, report.Success())
}

func TestUploadCoordinator_Remove(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	c, _ := newCoordinator(t, fake)
	ctx := context.Background()

	attach(t, c, "Passport", 100)
	_, err := c.SubmitAll(ctx)
	require.NoError(t, err)
	require.Len(t, c.Uploaded(), 1)

	require.NoError(t, c.Remove(ctx, c.Uploaded()[0].ID))
	assert.Empty(t, c.Uploaded())

	err = c.Remove(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// emptyDocumentStore acknowledges uploads without returning the stored record.
type emptyDocumentStore struct{ *testutil.FakeRecordSystem }

func (emptyDocumentStore) UploadDocument(context.Context, domain.UploadRequest) (*domain.Document, error) {
	return nil, nil
}

func TestUploadCoordinator_MissingDocumentIsFailure(t *testing.T) {
	fake := testutil.NewFakeRecordSystem()
	task := testutil.NewTestTask("Visa")
	fake.PutTask(task)
	resolver := NewCategoryResolver(fake, task.CaseTypeID)
	require.NoError(t, resolver.Seed(context.Background()))
	c := NewUploadCoordinator(task.ID, emptyDocumentStore{fake}, resolver, NewSizeBudget(0, 0),
		CoordinatorConfig{Actor: "clerk"})
	attach(t, c, "Passport", 100)

	report, err := c.SubmitAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.ErrorIs(t, report.Err(), domain.ErrUploadFailed)
	assert.Empty(t, c.Uploaded())

	slot, ok := c.Slot("Passport")
	require.True(t, ok)
	assert.Equal(t, domain.SlotFilePending, slot.State)
}
