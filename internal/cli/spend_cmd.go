package cli

import (
	"fmt"

	"github.com/alexanderramin/buildtrack/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSpendCmd(app *App, pf *principalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spend",
		Short: "Record project spend",
	}
	cmd.AddCommand(newSpendAddCmd(app, pf), newSpendSetCmd(app, pf))
	return cmd
}

func newSpendAddCmd(app *App, pf *principalFlags) *cobra.Command {
	var amount float64

	cmd := &cobra.Command{
		Use:   "add <project-id>",
		Short: "Add to a project's actual spend (negative amounts correct it)",
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
			total, err := app.Spend.AccrueSpend(cmd.Context(), actor, id, amount)
			if err != nil {
				return err
			}
			status, err := app.Spend.BudgetStatus(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Actual spend is now %s  %s\n", formatter.Money(total), formatter.BudgetBadge(status))
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount to add, e.g. --amount=500 or --amount=-200")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newSpendSetCmd(app *App, pf *principalFlags) *cobra.Command {
	var amount float64

	cmd := &cobra.Command{
		Use:   "set <project-id>",
		Short: "Overwrite a project's actual spend (admins only)",
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
			if err := app.Spend.SetSpend(cmd.Context(), actor, id, amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Actual spend set to %s\n", formatter.Money(amount))
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "New actual spend")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
