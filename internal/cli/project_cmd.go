package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/buildtrack/internal/cli/formatter"
	"github.com/alexanderramin/buildtrack/internal/service"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newProjectCmd(app *App, pf *principalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectCreateCmd(app, pf),
		newProjectListCmd(app, pf),
		newProjectShowCmd(app),
		newProjectTasksCmd(app),
		newProjectUpdateCmd(app, pf),
		newProjectAssignManagerCmd(app, pf),
		newProjectDeleteCmd(app, pf),
		newProjectTimelineCmd(app),
		newProjectBudgetCmd(app),
	)

	return cmd
}

func newProjectCreateCmd(app *App, pf *principalFlags) *cobra.Command {
	var (
		in  service.NewProject
		end string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project with its phases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := pf.principal()
			if err != nil {
				return err
			}
			if end != "" {
				if in.EndDate, err = time.Parse(dateLayout, end); err != nil {
					return fmt.Errorf("invalid end date %q: %w", end, err)
				}
			}

			p, err := app.Projects.Create(cmd.Context(), actor, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project #%d %s with %d phase(s)\n", p.ID, p.Name, in.Phases)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Project name")
	cmd.Flags().Float64Var(&in.PlannedBudget, "budget", 0, "Planned budget")
	cmd.Flags().Int64Var(&in.ManagerID, "manager", 0, "Project manager user id")
	cmd.Flags().Int64Var(&in.ClientID, "client", 0, "Client user id")
	cmd.Flags().Int64Var(&in.BuilderID, "builder", 0, "Builder user id (admins only; builders own what they create)")
	cmd.Flags().IntVar(&in.Phases, "phases", 1, "Number of phases to generate")
	cmd.Flags().StringVar(&end, "end-date", "", "End date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(app *App, pf *principalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the projects visible to the acting user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := pf.principal()
			if err != nil {
				return err
			}
			projects, err := app.Projects.ListFor(cmd.Context(), actor)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			tl, err := app.Projects.Timeline(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectDetail(p, tl, app.now()))
			return nil
		},
	}
}

func newProjectTasksCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks <id>",
		Short: "List a project's phases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tasks, err := app.Projects.Tasks(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTasks(tasks))
			return nil
		},
	}
}

func newProjectUpdateCmd(app *App, pf *principalFlags) *cobra.Command {
	var (
		name   string
		budget float64
		end    string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project's name, budget or end date",
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

			var upd service.ProjectUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("budget") {
				upd.PlannedBudget = &budget
			}
			if cmd.Flags().Changed("end-date") {
				d, err := time.Parse(dateLayout, end)
				if err != nil {
					return fmt.Errorf("invalid end date %q: %w", end, err)
				}
				upd.EndDate = &d
			}
			if upd.Name == nil && upd.PlannedBudget == nil && upd.EndDate == nil {
				return fmt.Errorf("nothing to update: pass --name, --budget or --end-date")
			}

			p, err := app.Projects.Update(cmd.Context(), actor, id, upd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project #%d %s\n", p.ID, p.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New project name")
	cmd.Flags().Float64Var(&budget, "budget", 0, "New planned budget")
	cmd.Flags().StringVar(&end, "end-date", "", "New end date (YYYY-MM-DD)")

	return cmd
}

func newProjectAssignManagerCmd(app *App, pf *principalFlags) *cobra.Command {
	var managerID int64

	cmd := &cobra.Command{
		Use:   "assign-manager <id>",
		Short: "Assign or replace a project's manager",
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
			if err := app.Projects.ReassignManager(cmd.Context(), actor, id, managerID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project #%d is now managed by user %d\n", id, managerID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&managerID, "manager", 0, "New manager user id")
	_ = cmd.MarkFlagRequired("manager")

	return cmd
}

func newProjectDeleteCmd(app *App, pf *principalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and its tasks",
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
			if err := app.Projects.Delete(cmd.Context(), actor, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project #%d\n", id)
			return nil
		},
	}
}

func newProjectTimelineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline <id>",
		Short: "Show phase progress against the end date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tl, err := app.Projects.Timeline(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTimeline(tl, app.now()))
			return nil
		},
	}
}

func newProjectBudgetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "budget <id>",
		Short: "Compare actual spend with the planned budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := app.Spend.Budget(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBudget(r.ProjectName, r.PlannedBudget, r.ActualSpend, r.Status))
			return nil
		},
	}
}
