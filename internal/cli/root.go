package cli

import (
	"time"

	"github.com/alexanderramin/buildtrack/internal/audit"
	"github.com/alexanderramin/buildtrack/internal/service"
	"github.com/spf13/cobra"
)

// AuditReader exposes the audit trail to the CLI.
type AuditReader interface {
	ReadAll() ([]audit.Entry, error)
}

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects      service.ProjectService
	Lifecycle     service.LifecycleService
	Spend         service.SpendService
	Notifications service.NotificationService
	Audit         AuditReader

	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "buildtrack" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "buildtrack",
		Short:         "Construction project lifecycle and spend tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := &principalFlags{}
	pf.register(root.PersistentFlags())

	root.AddCommand(
		newProjectCmd(app, pf),
		newTaskCmd(app, pf),
		newSpendCmd(app, pf),
		newNotificationsCmd(app, pf),
		newAuditCmd(app),
	)

	return root
}
