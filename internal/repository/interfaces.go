package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/buildtrack/internal/domain"
)

var (
	// ErrNotFound is wrapped by every lookup that matches no row.
	ErrNotFound = errors.New("not found")

	// ErrStatusConflict means a conditional status update matched no row
	// because the stored status was not the expected one.
	ErrStatusConflict = errors.New("project status changed concurrently")
)

// TaskCounts is the per-status task tally for one project.
type TaskCounts struct {
	Total     int
	Pending   int
	Completed int
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	ListByMember(ctx context.Context, role domain.Role, userID int64) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	SetManager(ctx context.Context, id, managerID int64) error
	Delete(ctx context.Context, id int64) error

	GetStatus(ctx context.Context, id int64) (domain.ProjectStatus, error)
	SetStatus(ctx context.Context, id int64, from, to domain.ProjectStatus, now time.Time) error

	GetSpend(ctx context.Context, id int64) (float64, error)
	SetSpend(ctx context.Context, id int64, amount float64) error
	AddSpend(ctx context.Context, id int64, delta float64) (float64, error)
}

type TaskRepo interface {
	CreateBatch(ctx context.Context, tasks []*domain.Task) error
	ListByProject(ctx context.Context, projectID int64) ([]*domain.Task, error)
	SelectPendingOrderedByID(ctx context.Context, projectID int64, limit int) ([]*domain.Task, error)
	MarkCompleted(ctx context.Context, ids []int64, now time.Time) (int, error)
	CountByStatus(ctx context.Context, projectID int64) (TaskCounts, error)
}

type NotificationRepo interface {
	Persist(ctx context.Context, userID int64, message string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Notification, error)
}
