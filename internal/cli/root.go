package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/alexanderramin/casework/internal/gateway"
	"github.com/alexanderramin/casework/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// App holds what CLI commands need: the system of record, the renderer and
// the engine settings every edit session shares.
type App struct {
	Records   gateway.RecordSystem
	Renderer  gateway.InvoiceRenderer
	Engine    service.ReconcilerConfig
	Observers []service.UseCaseObserver

	// Serve settings; Serve is only offered when a local store is wired.
	ListenAddr     string
	MaxUploadBytes int64
	Registry       *prometheus.Registry
	Logger         *slog.Logger
	LocalStore     bool

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// open starts an edit session on taskID.
func (a *App) open(ctx context.Context, taskID string) (*service.TaskReconciler, error) {
	r := service.NewTaskReconciler(a.Records, a.Renderer, a.Engine, a.Observers...)
	if err := r.Load(ctx, taskID); err != nil {
		return nil, err
	}
	return r, nil
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// NewRootCmd creates the top-level "casework" command and registers all
// subcommands against app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "casework",
		Short:         "Keep tasks, payment phases and documents in sync with the system of record",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newTaskCmd(app),
		newPhaseCmd(app),
		newInvoiceCmd(app),
		newDocCmd(app),
		newCustomerCmd(app),
		newCategoriesCmd(app),
	)

	return root
}
