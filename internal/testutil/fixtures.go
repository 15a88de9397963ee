package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/alexanderramin/buildtrack/internal/repository"
)

// Default stakeholder ids used by fixtures.
const (
	BuilderID int64 = 10
	ManagerID int64 = 20
	ClientID  int64 = 30
)

// Project options
type ProjectOption func(*domain.Project)

func WithBudget(planned, actual float64) ProjectOption {
	return func(p *domain.Project) {
		p.PlannedBudget = planned
		p.ActualSpend = actual
	}
}

func WithStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithStakeholders(builder, manager, client int64) ProjectOption {
	return func(p *domain.Project) {
		p.BuilderID = builder
		p.ManagerID = manager
		p.ClientID = client
	}
}

func WithEndDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.EndDate = d
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		Name:          name,
		Status:        domain.ProjectUpcoming,
		PlannedBudget: 1000,
		BuilderID:     BuilderID,
		ManagerID:     ManagerID,
		ClientID:      ClientID,
		EndDate:       now.AddDate(0, 3, 0),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SeedProject inserts a project and n pending phases, returning the project
// and its tasks in id order.
func SeedProject(t *testing.T, database *sql.DB, name string, n int, opts ...ProjectOption) (*domain.Project, []*domain.Task) {
	t.Helper()
	ctx := context.Background()

	p := NewTestProject(name, opts...)
	if err := repository.NewSQLProjectRepo(database).Create(ctx, p); err != nil {
		t.Fatalf("seeding project: %v", err)
	}
	tasks := domain.NewPhases(p.ID, n, p.CreatedAt)
	if err := repository.NewSQLTaskRepo(database).CreateBatch(ctx, tasks); err != nil {
		t.Fatalf("seeding tasks: %v", err)
	}
	return p, tasks
}

// TaskStatuses returns the status of every task of a project in id order.
func TaskStatuses(t *testing.T, database *sql.DB, projectID int64) []domain.TaskStatus {
	t.Helper()
	tasks, err := repository.NewSQLTaskRepo(database).ListByProject(context.Background(), projectID)
	if err != nil {
		t.Fatalf("listing tasks: %v", err)
	}
	out := make([]domain.TaskStatus, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Status)
	}
	return out
}
