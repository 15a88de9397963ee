package cli

import (
	"fmt"

	"github.com/alexanderramin/buildtrack/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App, pf *principalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Advance project phases",
	}
	cmd.AddCommand(newTaskAdvanceCmd(app, pf))
	return cmd
}

func newTaskAdvanceCmd(app *App, pf *principalFlags) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "advance <project-id>",
		Short: "Mark the next pending phases of a project as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := pf.principal()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := app.Lifecycle.AdvanceTasks(cmd.Context(), actor, id, count)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatusChange(res.UpdatedCount, res.PreviousStatus, res.Status, res.Changed))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of pending tasks to complete")

	return cmd
}
