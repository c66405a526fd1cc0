package cli

import (
	"fmt"

	"github.com/alexanderramin/casework/internal/cli/formatter"
	"github.com/alexanderramin/casework/internal/domain"
	"github.com/alexanderramin/casework/internal/service"
	"github.com/spf13/cobra"
)

func newCustomerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage customers",
	}
	cmd.AddCommand(newCustomerSetCmd(app))
	return cmd
}

func newCustomerSetCmd(app *App) *cobra.Command {
	var c domain.Customer
	var taskID string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a customer, optionally linking it to a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.Records.UpsertCustomer(ctx, &c); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved customer %s (%s)\n", c.Name, c.ID)

			if taskID == "" {
				return nil
			}
			r, err := app.open(ctx, taskID)
			if err != nil {
				return err
			}
			r.EditDraft(func(d *service.TaskDraft) { d.CustomerID = c.ID })
			if _, err := r.Save(ctx, r.Draft()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Linked to task %s\n", formatter.Bold(r.Task().Title))
			return nil
		},
	}

	cmd.Flags().StringVar(&c.ID, "id", "", "Customer id (empty creates a new customer)")
	cmd.Flags().StringVar(&c.Name, "name", "", "Name")
	cmd.Flags().StringVar(&c.Email, "email", "", "Email")
	cmd.Flags().StringVar(&c.Phone, "phone", "", "Phone")
	cmd.Flags().StringVar(&c.Address, "address", "", "Postal address")
	cmd.Flags().StringVar(&taskID, "task", "", "Link the customer to this task")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
