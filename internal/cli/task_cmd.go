package cli

import (
	"fmt"

	"github.com/alexanderramin/casework/internal/cli/formatter"
	"github.com/alexanderramin/casework/internal/domain"
	"github.com/alexanderramin/casework/internal/service"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, inspect and save tasks",
	}

	cmd.AddCommand(
		newTaskCreateCmd(app),
		newTaskShowCmd(app),
		newTaskSaveCmd(app),
	)

	return cmd
}

func newTaskCreateCmd(app *App) *cobra.Command {
	var title, caseType, description, customerID, due string
	var amount float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := parseDate("due date", due)
			if err != nil {
				return err
			}
			t := &domain.Task{
				Title:         title,
				Description:   description,
				CaseTypeID:    caseType,
				CustomerID:    customerID,
				ServiceAmount: amount,
				Status:        domain.TaskOpen,
				DueDate:       dueDate,
			}
			if err := app.Records.CreateTask(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s (%s)\n", t.Title, t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&caseType, "case-type", "", "Case type id")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&customerID, "customer", "", "Customer id")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Service amount")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("case-type")

	return cmd
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show TASK_ID",
		Short: "Show a task with its phases and documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTask(r.Task(), r.PendingAmount()))
			return nil
		},
	}
}

func newTaskSaveCmd(app *App) *cobra.Command {
	var attach []string
	var otherName string
	var hidden bool

	cmd := &cobra.Command{
		Use:   "save TASK_ID",
		Short: "Save task fields, then upload any attached documents",
		Long: `Save validates and persists the task fields first. Only after the task
is saved are attached documents uploaded; a rejected task save uploads nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := app.open(ctx, args[0])
			if err != nil {
				return err
			}

			draft := r.Draft()
			if err := applyTaskFlags(cmd, &draft); err != nil {
				return err
			}

			atts, err := parseAttachments(attach)
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

			out := cmd.OutOrStdout()
			for _, c := range service.DiffTask(r.Task(), draft) {
				fmt.Fprintf(out, "%s %s: %v → %v\n", formatter.Dim("~"), c.Field, c.From, c.To)
			}

			result, err := r.Save(ctx, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved task %s\n", r.Task().Title)
			if result.Uploads != nil {
				fmt.Fprintln(out, formatter.FormatUploadReport(result.Uploads))
			}
			return result.Err()
		},
	}

	cmd.Flags().String("title", "", "Task title")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("case-type", "", "Case type id")
	cmd.Flags().String("customer", "", "Customer id")
	cmd.Flags().String("status", "", "Status (open|in_progress|completed|cancelled)")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD, empty clears)")
	cmd.Flags().Float64("amount", 0, "Service amount")
	cmd.Flags().StringArrayVar(&attach, "attach", nil, "Attach a document as label=path (repeatable)")
	cmd.Flags().StringVar(&otherName, "other-name", "", `Name for a document attached under "Other"`)
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Hide attached documents from the customer")

	return cmd
}

// applyTaskFlags copies the task flags the user set onto draft.
func applyTaskFlags(cmd *cobra.Command, draft *service.TaskDraft) error {
	fs := cmd.Flags()
	if v, ok := changedString(fs, "title"); ok {
		draft.Title = v
	}
	if v, ok := changedString(fs, "description"); ok {
		draft.Description = v
	}
	if v, ok := changedString(fs, "case-type"); ok {
		draft.CaseTypeID = v
	}
	if v, ok := changedString(fs, "customer"); ok {
		draft.CustomerID = v
	}
	if v, ok := changedString(fs, "status"); ok {
		draft.Status = domain.TaskStatus(v)
	}
	if v, ok := changedString(fs, "due"); ok {
		due, err := parseDate("due date", v)
		if err != nil {
			return err
		}
		draft.DueDate = due
	}
	if v, ok := changedFloat(fs, "amount"); ok {
		draft.ServiceAmount = v
	}
	return nil
}
