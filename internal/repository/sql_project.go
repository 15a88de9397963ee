package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/buildtrack/internal/db"
	"github.com/alexanderramin/buildtrack/internal/domain"
)

const projectColumns = `id, name, status, planned_budget, actual_spend,
		builder_id, manager_id, client_id, end_date, created_at, updated_at`

// SQLProjectRepo implements ProjectRepo over any DBTX (a pool or a transaction).
type SQLProjectRepo struct {
	db db.DBTX
}

// NewSQLProjectRepo creates a new SQLProjectRepo.
func NewSQLProjectRepo(conn db.DBTX) *SQLProjectRepo {
	return &SQLProjectRepo{db: conn}
}

func (r *SQLProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (name, status, planned_budget, actual_spend,
		builder_id, manager_id, client_id, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		p.Name,
		string(p.Status),
		p.PlannedBudget,
		p.ActualSpend,
		p.BuilderID,
		p.ManagerID,
		p.ClientID,
		dateToValue(p.EndDate),
		formatTimestamp(p.CreatedAt),
		formatTimestamp(p.UpdatedAt),
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return p, err
}

func (r *SQLProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY id`
	return r.queryProjects(ctx, query)
}

// ListByMember returns the projects a user takes part in under the given role.
// Admins see every project.
func (r *SQLProjectRepo) ListByMember(ctx context.Context, role domain.Role, userID int64) ([]*domain.Project, error) {
	var column string
	switch role {
	case domain.RoleAdmin:
		return r.List(ctx)
	case domain.RoleBuilder:
		column = "builder_id"
	case domain.RoleProjectManager:
		column = "manager_id"
	case domain.RoleClient:
		column = "client_id"
	default:
		return nil, fmt.Errorf("unsupported role: %s", role)
	}
	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` + column + ` = ? ORDER BY id`
	return r.queryProjects(ctx, query, userID)
}

func (r *SQLProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET name = ?, planned_budget = ?, end_date = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Name,
		p.PlannedBudget,
		dateToValue(p.EndDate),
		formatTimestamp(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return requireRow(res, p.ID)
}

func (r *SQLProjectRepo) SetManager(ctx context.Context, id, managerID int64) error {
	query := `UPDATE projects SET manager_id = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, managerID, formatTimestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("updating project manager: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLProjectRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireRow(res, id)
}

func (r *SQLProjectRepo) GetStatus(ctx context.Context, id int64) (domain.ProjectStatus, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM projects WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading project status: %w", err)
	}
	return domain.ParseProjectStatus(raw)
}

// SetStatus moves the project from one status to another. The write only
// applies while the stored status still equals from.
func (r *SQLProjectRepo) SetStatus(ctx context.Context, id int64, from, to domain.ProjectStatus, now time.Time) error {
	query := `UPDATE projects SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, string(to), formatTimestamp(now), id, string(from))
	if err != nil {
		return fmt.Errorf("updating project status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating project status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %d %s -> %s: %w", id, from, to, ErrStatusConflict)
	}
	return nil
}

func (r *SQLProjectRepo) GetSpend(ctx context.Context, id int64) (float64, error) {
	var spend float64
	err := r.db.QueryRowContext(ctx, `SELECT actual_spend FROM projects WHERE id = ?`, id).Scan(&spend)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("reading actual spend: %w", err)
	}
	return spend, nil
}

func (r *SQLProjectRepo) SetSpend(ctx context.Context, id int64, amount float64) error {
	query := `UPDATE projects SET actual_spend = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, amount, formatTimestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("writing actual spend: %w", err)
	}
	return requireRow(res, id)
}

// AddSpend increments actual_spend in a single statement and returns the
// new total, so concurrent callers cannot lose each other's updates.
func (r *SQLProjectRepo) AddSpend(ctx context.Context, id int64, delta float64) (float64, error) {
	query := `UPDATE projects SET actual_spend = actual_spend + ?, updated_at = ?
		WHERE id = ? RETURNING actual_spend`
	var total float64
	err := r.db.QueryRowContext(ctx, query, delta, formatTimestamp(time.Now()), id).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("accruing actual spend: %w", err)
	}
	return total, nil
}

func (r *SQLProjectRepo) queryProjects(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var statusStr, createdAtStr, updatedAtStr string
	var endDateStr sql.NullString

	err := row.Scan(
		&p.ID, &p.Name, &statusStr, &p.PlannedBudget, &p.ActualSpend,
		&p.BuilderID, &p.ManagerID, &p.ClientID,
		&endDateStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	if p.Status, err = domain.ParseProjectStatus(statusStr); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	p.EndDate = parseNullableDate(endDateStr)

	return &p, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return nil
}
