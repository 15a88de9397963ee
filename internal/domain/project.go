package domain

import (
	"fmt"
	"time"
)

type Project struct {
	ID            int64
	Name          string
	Status        ProjectStatus
	PlannedBudget float64
	ActualSpend   float64
	BuilderID     int64
	ManagerID     int64
	ClientID      int64
	EndDate       time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the fields a builder supplies when creating or updating a project.
func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if p.PlannedBudget < 0 {
		return fmt.Errorf("planned budget must be >= 0, got %.2f", p.PlannedBudget)
	}
	if p.ActualSpend < 0 {
		return fmt.Errorf("actual spend must be >= 0, got %.2f", p.ActualSpend)
	}
	return nil
}

// BudgetStatus reports IN BUDGET only while spend is strictly below the plan.
func (p *Project) BudgetStatus() BudgetStatus {
	return CompareBudget(p.ActualSpend, p.PlannedBudget)
}

func CompareBudget(actualSpend, plannedBudget float64) BudgetStatus {
	if actualSpend < plannedBudget {
		return InBudget
	}
	return OutOfBudget
}

// StatusRecipients returns who is told about a lifecycle status change.
func (p *Project) StatusRecipients() []Recipient {
	return []Recipient{
		{UserID: p.BuilderID, Role: RoleBuilder},
		{UserID: p.ClientID, Role: RoleClient},
	}
}

// StakeholderRecipients returns who is told about builder-side edits.
func (p *Project) StakeholderRecipients() []Recipient {
	return []Recipient{
		{UserID: p.ClientID, Role: RoleClient},
		{UserID: p.ManagerID, Role: RoleProjectManager},
	}
}

// DeriveStatus computes the project status from task counts.
//
// COMPLETED is terminal. A project with no tasks, or with no completed task
// yet, keeps its current status, so UPCOMING only ever moves forward once
// the first phase is done.
func DeriveStatus(current ProjectStatus, total, pending int) ProjectStatus {
	if current == ProjectCompleted {
		return ProjectCompleted
	}
	if total <= 0 {
		return current
	}
	if pending <= 0 {
		return ProjectCompleted
	}
	if pending == total {
		return current
	}
	return ProjectInProgress
}

// StatusMessage is the notification text sent when a project enters status s.
func StatusMessage(projectName string, s ProjectStatus) string {
	switch s {
	case ProjectInProgress:
		return fmt.Sprintf("Project '%s' is now in progress.", projectName)
	case ProjectCompleted:
		return fmt.Sprintf("Project '%s' has been completed.", projectName)
	default:
		return fmt.Sprintf("Project '%s' status changed to %s.", projectName, s)
	}
}
