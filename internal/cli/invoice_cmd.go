package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInvoiceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Allocate invoice numbers and render invoices",
	}

	cmd.AddCommand(
		newInvoiceAllocateCmd(app),
		newInvoiceRenderCmd(app),
	)

	return cmd
}

func newInvoiceAllocateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "allocate TASK_ID PHASE_NUMBER",
		Short: "Allocate an invoice number for a phase",
		Long:  "Allocate returns the phase's existing number when it already has one.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := app.open(ctx, args[0])
			if err != nil {
				return err
			}
			i, err := parseIndex(args[1], r.Phases().Len())
			if err != nil {
				return err
			}
			number, err := r.Phases().AllocateInvoice(ctx, i)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), number)
			return nil
		},
	}
}

func newInvoiceRenderCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "render TASK_ID PHASE_NUMBER",
		Short: "Render a phase invoice to a PDF file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			ctx := cmd.Context()
			r, err := app.open(ctx, args[0])
			if err != nil {
				return err
			}
			i, err := parseIndex(args[1], r.Phases().Len())
			if err != nil {
				return err
			}
			pdf, err := r.RenderInvoice(ctx, i)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, pdf, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output PDF path")

	return cmd
}
