package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/buildtrack/internal/domain"
)

// FormatProjectList renders projects as a table inside a bordered box.
func FormatProjectList(projects []*domain.Project) string {
	if len(projects) == 0 {
		return Dim("No projects.")
	}
	headers := []string{"ID", "NAME", "STATUS", "PLANNED", "SPENT", "BUDGET", "END"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.ID),
			Bold(p.Name),
			StatusPill(p.Status),
			Money(p.PlannedBudget),
			Money(p.ActualSpend),
			BudgetBadge(p.BudgetStatus()),
			FormatDate(p.EndDate),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows, 0, 3, 4))
}

// FormatProjectDetail renders a single project card.
func FormatProjectDetail(p *domain.Project, tl *domain.Timeline, now time.Time) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", Dim(fmt.Sprintf("%-10s", label)), value)
	}
	line("Status", StatusPill(p.Status))
	line("Planned", Money(p.PlannedBudget))
	line("Spent", Money(p.ActualSpend))
	line("Budget", BudgetBadge(p.BudgetStatus()))
	line("Builder", userRef(p.BuilderID))
	line("Manager", userRef(p.ManagerID))
	line("Client", userRef(p.ClientID))
	line("End date", FormatDate(p.EndDate))
	if tl != nil {
		line("Progress", tl.Gantt())
		if !tl.EndDate.IsZero() {
			line("Schedule", DaysLeftStyled(tl.DaysRemaining(now))+"  "+RiskIndicator(tl.Risk))
		}
	}
	return RenderBox(fmt.Sprintf("#%d %s", p.ID, p.Name), b.String())
}

// FormatTimeline renders the phase progress bar with the remaining-work summary.
func FormatTimeline(tl *domain.Timeline, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", tl.Gantt())
	fmt.Fprintf(&b, "Remaining tasks: %d\n", tl.RemainingTasks())
	if tl.EndDate.IsZero() {
		fmt.Fprintf(&b, "End date: %s\n", Dim("not set"))
	} else {
		fmt.Fprintf(&b, "End date: %s (%s)\n", FormatDate(tl.EndDate), DaysLeftStyled(tl.DaysRemaining(now)))
	}
	if tl.Risk != "" {
		fmt.Fprintf(&b, "Risk: %s\n", RiskIndicator(tl.Risk))
		fmt.Fprintf(&b, "Progress: %.0f%% of phases, %.0f%% of schedule used\n", tl.ProgressPct, tl.TimeElapsedPct)
	}
	if tl.RequiredPerWeek > 0 {
		fmt.Fprintf(&b, "Required pace: %.1f phases/week\n", tl.RequiredPerWeek)
	}
	return RenderBox("Timeline · "+tl.ProjectName, b.String())
}

func FormatBudget(name string, planned, actual float64, status domain.BudgetStatus) string {
	return fmt.Sprintf("%s  planned %s  spent %s  %s",
		Bold(name), Money(planned), Money(actual), BudgetBadge(status))
}

func FormatTasks(tasks []*domain.Task) string {
	if len(tasks) == 0 {
		return Dim("No tasks.")
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{fmt.Sprintf("%d", t.ID), t.Name, TaskStatusPill(t.Status), FormatDate(t.UpdatedAt)})
	}
	return RenderTable([]string{"ID", "TASK", "STATUS", "UPDATED"}, rows, 0)
}

func FormatNotifications(list []*domain.Notification) string {
	if len(list) == 0 {
		return Dim("No notifications.")
	}
	var b strings.Builder
	b.WriteString(Header("Notifications"))
	b.WriteString("\n")
	for _, n := range list {
		fmt.Fprintf(&b, "%s  %s\n", Dim(n.CreatedAt.Local().Format("2006-01-02 15:04")), n.Message)
	}
	return b.String()
}

// FormatStatusChange summarises an AdvanceTasks outcome in one line.
func FormatStatusChange(updated int, from, to domain.ProjectStatus, changed bool) string {
	if updated == 0 {
		return Dim("No pending tasks to update.")
	}
	msg := fmt.Sprintf("Completed %d task(s).", updated)
	if changed {
		msg += fmt.Sprintf(" Status %s → %s", StatusPill(from), StatusPill(to))
	}
	return msg
}

func userRef(id int64) string {
	if id <= 0 {
		return Dim("unassigned")
	}
	return fmt.Sprintf("user %d", id)
}
