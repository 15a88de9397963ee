package cli

import (
	"fmt"

	"github.com/alexanderramin/buildtrack/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newAuditCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail, newest last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Audit == nil {
				return fmt.Errorf("audit log is not configured")
			}
			entries, err := app.Audit.ReadAll()
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Audit trail is empty."))
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Time.Local().Format("2006-01-02 15:04"),
					e.Action,
					fmt.Sprintf("%d", e.UserID),
					e.UserName,
					e.Role,
					fmt.Sprintf("%d", e.ProjectID),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(
				[]string{"TIME", "ACTION", "USER", "NAME", "ROLE", "PROJECT"}, rows, 2, 5))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most this many recent entries (0 for all)")

	return cmd
}
