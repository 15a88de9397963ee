package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/buildtrack/internal/db"
	"github.com/alexanderramin/buildtrack/internal/domain"
)

const taskColumns = `id, project_id, name, status, created_at, updated_at`

// SQLTaskRepo implements TaskRepo over any DBTX.
type SQLTaskRepo struct {
	db db.DBTX
}

// NewSQLTaskRepo creates a new SQLTaskRepo.
func NewSQLTaskRepo(conn db.DBTX) *SQLTaskRepo {
	return &SQLTaskRepo{db: conn}
}

// CreateBatch inserts tasks in slice order, so ascending ids follow creation
// order. Each task's ID is filled in from the database.
func (r *SQLTaskRepo) CreateBatch(ctx context.Context, tasks []*domain.Task) error {
	query := `INSERT INTO tasks (project_id, name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`
	for _, t := range tasks {
		err := r.db.QueryRowContext(ctx, query,
			t.ProjectID,
			t.Name,
			string(t.Status),
			formatTimestamp(t.CreatedAt),
			formatTimestamp(t.UpdatedAt),
		).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("inserting task %q: %w", t.Name, err)
		}
	}
	return nil
}

func (r *SQLTaskRepo) ListByProject(ctx context.Context, projectID int64) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ORDER BY id`
	return r.queryTasks(ctx, query, projectID)
}

// SelectPendingOrderedByID returns up to limit pending tasks, lowest id first.
func (r *SQLTaskRepo) SelectPendingOrderedByID(ctx context.Context, projectID int64, limit int) ([]*domain.Task, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE project_id = ? AND status = ?
		ORDER BY id ASC
		LIMIT ?`
	return r.queryTasks(ctx, query, projectID, string(domain.TaskPending), limit)
}

// MarkCompleted moves the given pending tasks to COMPLETED and returns how
// many rows changed. Tasks that are already completed are left untouched.
func (r *SQLTaskRepo) MarkCompleted(ctx context.Context, ids []int64, now time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+3)
	args = append(args, string(domain.TaskCompleted), formatTimestamp(now), string(domain.TaskPending))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE tasks SET status = ?, updated_at = ?
		WHERE status = ? AND id IN (` + placeholders(len(ids)) + `)`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("marking tasks completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("marking tasks completed: %w", err)
	}
	return int(n), nil
}

func (r *SQLTaskRepo) CountByStatus(ctx context.Context, projectID int64) (TaskCounts, error) {
	query := `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM tasks WHERE project_id = ?`
	var c TaskCounts
	if err := r.db.QueryRowContext(ctx, query, string(domain.TaskPending), projectID).Scan(&c.Total, &c.Pending); err != nil {
		return TaskCounts{}, fmt.Errorf("counting tasks: %w", err)
	}
	c.Completed = c.Total - c.Pending
	return c, nil
}

func (r *SQLTaskRepo) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var statusStr, createdAtStr, updatedAtStr string
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &statusStr, &createdAtStr, &updatedAtStr); err != nil {
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	var err error
	if t.Status, err = domain.ParseTaskStatus(statusStr); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}
