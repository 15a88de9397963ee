package domain

import "fmt"

type ProjectStatus string

const (
	ProjectUpcoming   ProjectStatus = "UPCOMING"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectCompleted  ProjectStatus = "COMPLETED"
)

// ParseProjectStatus maps a persisted status literal onto ProjectStatus.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(s) {
	case ProjectUpcoming, ProjectInProgress, ProjectCompleted:
		return ProjectStatus(s), nil
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskCompleted TaskStatus = "COMPLETED"
)

// ParseTaskStatus maps a persisted status literal onto TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskPending, TaskCompleted:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleBuilder        Role = "BUILDER"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleClient         Role = "CLIENT"
)

// ParseRole accepts the persisted role literal, case-insensitively for the
// common CLI spellings ("manager", "pm").
func ParseRole(s string) (Role, error) {
	switch s {
	case "ADMIN", "admin":
		return RoleAdmin, nil
	case "BUILDER", "builder":
		return RoleBuilder, nil
	case "PROJECT_MANAGER", "project_manager", "manager", "pm":
		return RoleProjectManager, nil
	case "CLIENT", "client":
		return RoleClient, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type BudgetStatus string

const (
	InBudget    BudgetStatus = "IN BUDGET"
	OutOfBudget BudgetStatus = "OUT OF BUDGET"
)

// RiskLevel grades how likely a project is to miss its end date.
type RiskLevel string

const (
	RiskOnTrack  RiskLevel = "on_track"
	RiskAtRisk   RiskLevel = "at_risk"
	RiskCritical RiskLevel = "critical"
)
