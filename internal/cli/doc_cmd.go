package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/casework/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newDocCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Upload and delete task documents",
	}

	cmd.AddCommand(
		newDocUploadCmd(app),
		newDocDeleteCmd(app),
	)

	return cmd
}

func newDocUploadCmd(app *App) *cobra.Command {
	var attach []string
	var otherName string
	var hidden bool

	cmd := &cobra.Command{
		Use:   "upload TASK_ID",
		Short: "Upload a batch of documents",
		Long: `Upload attaches each label=path pair and submits them together. Labels
missing from the case type's catalog are created first. One document's
failure does not stop the others.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			atts, err := parseAttachments(attach)
			if err != nil {
				return err
			}
			if len(atts) == 0 {
				return errors.New("at least one --attach label=path is required")
			}

			ctx := cmd.Context()
			r, err := app.open(ctx, args[0])
			if err != nil {
				return err
			}
			var visible *bool
			if cmd.Flags().Changed("hidden") {
				v := !hidden
				visible = &v
			}
			if err := stageAttachments(r.Uploads(), atts, otherName, visible); err != nil {
				return err
			}

			report, err := r.Uploads().SubmitAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatUploadReport(report))
			return report.Err()
		},
	}

	cmd.Flags().StringArrayVar(&attach, "attach", nil, "Attach a document as label=path (repeatable)")
	cmd.Flags().StringVar(&otherName, "other-name", "", `Name for a document attached under "Other"`)
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Hide the documents from the customer")

	return cmd
}

func newDocDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete TASK_ID DOCUMENT_ID",
		Short: "Delete an uploaded document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := app.open(ctx, args[0])
			if err != nil {
				return err
			}
			if err := r.Uploads().Remove(ctx, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted document %s\n", args[1])
			return nil
		},
	}
}
