package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/alexanderramin/casework/internal/domain"
	"github.com/alexanderramin/casework/internal/gateway"
	"github.com/alexanderramin/casework/internal/service"
	"github.com/alexanderramin/casework/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct{}

func (fakeRenderer) RenderInvoice(_ context.Context, doc domain.InvoiceDocument) ([]byte, error) {
	return []byte("%PDF-1.7 " + doc.InvoiceNumber), nil
}

// testApp wires an App over an in-memory SQLite store.
func testApp(t *testing.T) (*App, *gateway.Local) {
	t.Helper()
	database := testutil.NewTestDB(t)
	local := gateway.NewLocal(database, testutil.NewTestUoW(database), "default")
	return &App{
		Records:  local,
		Renderer: fakeRenderer{},
		Engine: service.ReconcilerConfig{
			Actor:          "clerk",
			InvoicePrefix:  "ECSI",
			DefaultVisible: true,
			Now:            func() time.Time { return time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC) },
		},
		LocalStore: true,
	}, local
}

func seedTask(t *testing.T, local *gateway.Local) *domain.Task {
	t.Helper()
	task := &domain.Task{Title: "Visa", CaseTypeID: "immigration", ServiceAmount: 300}
	require.NoError(t, local.CreateTask(context.Background(), task))
	return task
}

func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("a"), size), 0o600))
	return path
}

func TestTaskCreateAndShow(t *testing.T) {
	app, _ := testApp(t)

	out, err := executeCmd(t, app, "task", "create", "--title", "Citizenship", "--case-type", "immigration", "--amount", "900")
	require.NoError(t, err)
	m := regexp.MustCompile(`\(([0-9a-f-]{36})\)`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)

	out, err = executeCmd(t, app, "task", "show", m[1])
	require.NoError(t, err)
	assert.Contains(t, out, "CITIZENSHIP")
	assert.Contains(t, out, "900.00")
	assert.Contains(t, out, "No phases yet.")
}

func TestTaskCreate_RequiresFlags(t *testing.T) {
	app, _ := testApp(t)
	_, err := executeCmd(t, app, "task", "create", "--title", "x")
	assert.ErrorContains(t, err, "case-type")
}

func TestPhaseAddEditMark(t *testing.T) {
	app, local := testApp(t)
	task := seedTask(t, local)

	out, err := executeCmd(t, app, "phase", "add", task.ID, "--name", "Agreement", "--due", "2025-02-01", "--amount", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending amount: 200.00")

	_, err = executeCmd(t, app, "phase", "add", task.ID, "--name", "agreement", "--due", "2025-02-01", "--amount", "5")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = executeCmd(t, app, "phase", "edit", task.ID, "1", "--amount", "150")
	require.NoError(t, err)

	out, err = executeCmd(t, app, "phase", "mark", task.ID, "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Paid")

	fetched, err := local.FetchTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Phases, 1)
	assert.Equal(t, 150.0, fetched.Phases[0].Amount)
	assert.Equal(t, domain.PhasePaid, fetched.Phases[0].Status)

	_, err = executeCmd(t, app, "phase", "edit", task.ID, "2")
	assert.ErrorContains(t, err, "out of range")
}

func TestPhaseEdit_DueDateMovesPaymentDate(t *testing.T) {
	app, local := testApp(t)
	task := seedTask(t, local)

	_, err := executeCmd(t, app, "phase", "add", task.ID, "--name", "Filing", "--due", "2025-02-01", "--amount", "50")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "phase", "edit", task.ID, "1", "--due", "2025-04-15")
	require.NoError(t, err)

	fetched, err := local.FetchTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Phases[0].PaymentDate)
	assert.Equal(t, "2025-04-15", fetched.Phases[0].PaymentDate.Format(dateLayout))
}

func TestInvoiceAllocateAndRender(t *testing.T) {
	app, local := testApp(t)
	ctx := context.Background()
	cust := &domain.Customer{Name: "Jordan Lee"}
	require.NoError(t, local.UpsertCustomer(ctx, cust))
	task := &domain.Task{Title: "Visa", CaseTypeID: "immigration", ServiceAmount: 300, CustomerID: cust.ID}
	require.NoError(t, local.CreateTask(ctx, task))
	require.NoError(t, local.CreatePaymentPhase(ctx, task.ID, testutil.NewTestPhase(task.ID, "Agreement", 100)))

	out, err := executeCmd(t, app, "invoice", "allocate", task.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, "ECSI-25-0001\n", out)

	out, err = executeCmd(t, app, "invoice", "allocate", task.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, "ECSI-25-0001\n", out, "existing number is reused")

	pdfPath := filepath.Join(t.TempDir(), "inv.pdf")
	_, err = executeCmd(t, app, "invoice", "render", task.ID, "1", "--out", pdfPath)
	require.NoError(t, err)
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 ECSI-25-0001", string(data))
}

func TestTaskSave_UploadsAfterSave(t *testing.T) {
	app, local := testApp(t)
	task := seedTask(t, local)
	passport := writeFile(t, "passport.pdf", 128)
	lease := writeFile(t, "lease.pdf", 64)

	out, err := executeCmd(t, app, "task", "save", task.ID,
		"--amount", "450",
		"--attach", "Passport="+passport,
		"--attach", "Other="+lease,
		"--other-name", "Lease",
		"--hidden")
	require.NoError(t, err)
	assert.Contains(t, out, "service_amount: 300 → 450")
	assert.Contains(t, out, "2 uploaded, 0 failed")

	fetched, err := local.FetchTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 450.0, fetched.ServiceAmount)
	require.Len(t, fetched.Documents, 2)
	for _, d := range fetched.Documents {
		assert.False(t, d.Visible)
	}
}

func TestTaskSave_RejectedSaveUploadsNothing(t *testing.T) {
	app, local := testApp(t)
	task := seedTask(t, local)
	passport := writeFile(t, "passport.pdf", 128)

	_, err := executeCmd(t, app, "task", "save", task.ID, "--amount", "-5", "--attach", "Passport="+passport)
	assert.ErrorIs(t, err, domain.ErrValidation)

	fetched, err := local.FetchTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.Documents)
}

func TestDocUploadAndDelete(t *testing.T) {
	app, local := testApp(t)
	task := seedTask(t, local)
	diploma := writeFile(t, "diploma.pdf", 32)

	out, err := executeCmd(t, app, "doc", "upload", task.ID, "--attach", "Diploma="+diploma)
	require.NoError(t, err)
	assert.Contains(t, out, "1 uploaded")

	fetched, err := local.FetchTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Documents, 1)

	_, err = executeCmd(t, app, "doc", "delete", task.ID, fetched.Documents[0].ID)
	require.NoError(t, err)
	_, err = executeCmd(t, app, "doc", "delete", task.ID, fetched.Documents[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocUpload_OverBudget(t *testing.T) {
	app, local := testApp(t)
	app.Engine.MaxFileBytes = 100
	app.Engine.MaxAggregateBytes = 1000
	task := seedTask(t, local)

	_, err := executeCmd(t, app, "doc", "upload", task.ID, "--attach", "Passport="+writeFile(t, "big.pdf", 101))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorContains(t, err, "big.pdf")
}

func TestDocUpload_BadAttachSpec(t *testing.T) {
	app, local := testApp(t)
	task := seedTask(t, local)
	_, err := executeCmd(t, app, "doc", "upload", task.ID, "--attach", "Passport")
	assert.ErrorContains(t, err, "want label=path")
}

func TestCustomerSetLinksTask(t *testing.T) {
	app, local := testApp(t)
	task := seedTask(t, local)

	out, err := executeCmd(t, app, "customer", "set", "--name", "Jordan Lee", "--task", task.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Linked to task")

	fetched, err := local.FetchTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Customer)
	assert.Equal(t, "Jordan Lee", fetched.Customer.Name)
}

func TestCategories(t *testing.T) {
	app, local := testApp(t)
	task := seedTask(t, local)
	_, err := local.CreateDocumentCategory(context.Background(), "immigration", "Passport")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "categories", task.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Passport")
	assert.Contains(t, out, "Other")
}

func TestServe_RequiresLocalStore(t *testing.T) {
	app, _ := testApp(t)
	app.LocalStore = false
	_, err := executeCmd(t, app, "serve")
	assert.ErrorContains(t, err, "local SQLite store")
}

func TestParseAttachments(t *testing.T) {
	atts, err := parseAttachments([]string{"Passport=/tmp/a.pdf", " Birth Certificate = /tmp/b=c.pdf "})
	require.NoError(t, err)
	assert.Equal(t, []attachment{
		{label: "Passport", path: "/tmp/a.pdf"},
		{label: "Birth Certificate", path: "/tmp/b=c.pdf"},
	}, atts)

	_, err = parseAttachments([]string{"=x"})
	assert.Error(t, err)
}

func TestValidatePositiveAmount(t *testing.T) {
	assert.NoError(t, validatePositiveAmount("12.5"))
	assert.Error(t, validatePositiveAmount("0"))
	assert.Error(t, validatePositiveAmount("abc"))
}
