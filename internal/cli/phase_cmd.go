package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/casework/internal/cli/formatter"
	"github.com/alexanderramin/casework/internal/domain"
	"github.com/spf13/cobra"
)

func newPhaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Manage a task's payment phases",
	}

	cmd.AddCommand(
		newPhaseAddCmd(app),
		newPhaseEditCmd(app),
		newPhaseMarkCmd(app),
	)

	return cmd
}

func newPhaseAddCmd(app *App) *cobra.Command {
	var name, due, paymentDate string
	var amount float64

	cmd := &cobra.Command{
		Use:   "add TASK_ID",
		Short: "Add a payment phase",
		Long: `Add a payment phase. Without --name on a terminal, an interactive form
is shown with the unused standard phase names as suggestions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := app.open(ctx, args[0])
			if err != nil {
				return err
			}
			store := r.Phases()

			if name == "" && app.interactive() {
				v := phaseFormValues{}
				if err := phaseInputForm(store.AvailableSuggestions(), &v).Run(); err != nil {
					return err
				}
				name, due, paymentDate = v.Name, v.DueDate, v.PaymentDate
				if amount, err = strconv.ParseFloat(strings.TrimSpace(v.Amount), 64); err != nil {
					return fmt.Errorf("invalid amount %q", v.Amount)
				}
			}

			form := domain.PhaseForm{Name: name, Amount: amount}
			if form.DueDate, err = parseDate("due date", due); err != nil {
				return err
			}
			if form.PaymentDate, err = parseDate("payment date", paymentDate); err != nil {
				return err
			}
			if err := store.AddDraft(ctx, form); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added phase %s\n", strings.TrimSpace(name))
			fmt.Fprintf(out, "Pending amount: %s\n", formatter.Money(r.PendingAmount()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Phase name")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&paymentDate, "payment-date", "", "Payment date (YYYY-MM-DD, defaults to the due date)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Phase amount")

	return cmd
}

func newPhaseEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit TASK_ID PHASE_NUMBER",
		Short: "Edit a payment phase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := app.open(ctx, args[0])
			if err != nil {
				return err
			}
			store := r.Phases()
			i, err := parseIndex(args[1], store.Len())
			if err != nil {
				return err
			}
			phase, err := store.Phase(i)
			if err != nil {
				return err
			}

			form := domain.FormFromPhase(phase)
			fs := cmd.Flags()
			if v, ok := changedString(fs, "name"); ok {
				form.Name = v
			}
			if v, ok := changedString(fs, "due"); ok {
				if form.DueDate, err = parseDate("due date", v); err != nil {
					return err
				}
				// A moved due date takes the payment date along unless one is given.
				if !fs.Changed("payment-date") {
					form.PaymentDate = nil
				}
			}
			if v, ok := changedString(fs, "payment-date"); ok {
				if form.PaymentDate, err = parseDate("payment date", v); err != nil {
					return err
				}
			}
			if v, ok := changedFloat(fs, "amount"); ok {
				form.Amount = v
			}

			if err := store.SaveEdit(ctx, i, form); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated phase %s\n", form.Name)
			return nil
		},
	}

	cmd.Flags().String("name", "", "Phase name")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().String("payment-date", "", "Payment date (YYYY-MM-DD)")
	cmd.Flags().Float64("amount", 0, "Phase amount")

	return cmd
}

func newPhaseMarkCmd(app *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "mark TASK_ID PHASE_NUMBER...",
		Short: "Toggle the status of one or more phases and save them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := app.open(ctx, args[0])
			if err != nil {
				return err
			}
			store := r.Phases()
			for _, arg := range args[1:] {
				i, err := parseIndex(arg, store.Len())
				if err != nil {
					return err
				}
				if err := store.MarkStatus(i, domain.PhaseStatus(status)); err != nil {
					return err
				}
			}
			if err := store.SaveDirty(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPhases(store.Phases()))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", string(domain.PhasePaid), "New status (pending|paid)")

	return cmd
}
