package cli

import (
	"fmt"

	"github.com/alexanderramin/casework/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newCategoriesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "categories TASK_ID",
		Short: "List document categories for a task's case type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res := r.Categories()
			labels := res.Labels()
			ids := make(map[string]int64, len(labels))
			for _, l := range labels {
				ids[l], _ = res.Lookup(l)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCategories(res.CaseTypeID(), labels, ids))
			return nil
		},
	}
}
