package service

import (
	"context"
	"time"

	"github.com/alexanderramin/buildtrack/internal/domain"
)

// AdvanceResult reports the outcome of one AdvanceTasks call.
type AdvanceResult struct {
	ProjectID      int64
	UpdatedCount   int
	PreviousStatus domain.ProjectStatus
	Status         domain.ProjectStatus
	Changed        bool
	Notified       int
}

type LifecycleService interface {
	AdvanceTasks(ctx context.Context, actor domain.Principal, projectID int64, completionCount int) (*AdvanceResult, error)
}

// BudgetReport is the planned-versus-actual view of one project.
type BudgetReport struct {
	ProjectID     int64
	ProjectName   string
	PlannedBudget float64
	ActualSpend   float64
	Status        domain.BudgetStatus
}

type SpendService interface {
	AccrueSpend(ctx context.Context, actor domain.Principal, projectID int64, delta float64) (float64, error)
	SetSpend(ctx context.Context, actor domain.Principal, projectID int64, amount float64) error
	BudgetStatus(ctx context.Context, projectID int64) (domain.BudgetStatus, error)
	Budget(ctx context.Context, projectID int64) (*BudgetReport, error)
}

// NewProject is the input for ProjectService.Create. BuilderID is taken
// from the actor when the actor is a builder.
type NewProject struct {
	Name          string
	PlannedBudget float64
	BuilderID     int64
	ManagerID     int64
	ClientID      int64
	EndDate       time.Time
	Phases        int
}

// ProjectUpdate carries the editable project fields; nil fields are kept.
type ProjectUpdate struct {
	Name          *string
	PlannedBudget *float64
	EndDate       *time.Time
}

type ProjectService interface {
	Create(ctx context.Context, actor domain.Principal, in NewProject) (*domain.Project, error)
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	ListFor(ctx context.Context, actor domain.Principal) ([]*domain.Project, error)
	Tasks(ctx context.Context, id int64) ([]*domain.Task, error)
	Timeline(ctx context.Context, id int64) (*domain.Timeline, error)
	Update(ctx context.Context, actor domain.Principal, id int64, upd ProjectUpdate) (*domain.Project, error)
	ReassignManager(ctx context.Context, actor domain.Principal, id, managerID int64) error
	Delete(ctx context.Context, actor domain.Principal, id int64) error
}

type NotificationService interface {
	ListForUser(ctx context.Context, userID int64) ([]*domain.Notification, error)
}
