package cli

import (
	"fmt"

	"github.com/alexanderramin/buildtrack/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newNotificationsCmd(app *App, pf *principalFlags) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications for a user (defaults to the acting user)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				userID = pf.userID
			}
			if userID <= 0 {
				return fmt.Errorf("pass --user or --user-id")
			}
			list, err := app.Notifications.ListForUser(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNotifications(list))
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User id whose notifications to list")

	return cmd
}
