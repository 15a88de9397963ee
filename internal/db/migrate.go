package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all SQLite schema migrations.
func Migrate(db *sql.DB) error {
	return MigrateDialect(db, DialectSQLite)
}

// MigrateDialect runs the migration set for dialect. Every statement is
// idempotent so the full set is replayed on each open.
func MigrateDialect(db *sql.DB, dialect Dialect) error {
	stmts := sqliteMigrations
	if dialect == DialectPostgres {
		stmts = postgresMigrations
	}
	for i, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate re-applied ALTER TABLE ADD COLUMN statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL,
		status         TEXT NOT NULL DEFAULT 'UPCOMING'
		               CHECK(status IN ('UPCOMING','IN_PROGRESS','COMPLETED')),
		planned_budget REAL NOT NULL DEFAULT 0 CHECK(planned_budget >= 0),
		actual_spend   REAL NOT NULL DEFAULT 0,
		builder_id     INTEGER NOT NULL,
		manager_id     INTEGER NOT NULL DEFAULT 0,
		client_id      INTEGER NOT NULL DEFAULT 0,
		end_date       TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_builder ON projects(builder_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_manager ON projects(manager_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'PENDING'
		           CHECK(status IN ('PENDING','COMPLETED')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project_status ON tasks(project_id, status, id)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		user_id    INTEGER NOT NULL CHECK(user_id > 0),
		message    TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`,
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id             BIGSERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		status         TEXT NOT NULL DEFAULT 'UPCOMING'
		               CHECK(status IN ('UPCOMING','IN_PROGRESS','COMPLETED')),
		planned_budget DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK(planned_budget >= 0),
		actual_spend   DOUBLE PRECISION NOT NULL DEFAULT 0,
		builder_id     BIGINT NOT NULL,
		manager_id     BIGINT NOT NULL DEFAULT 0,
		client_id      BIGINT NOT NULL DEFAULT 0,
		end_date       TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_builder ON projects(builder_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_manager ON projects(manager_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id         BIGSERIAL PRIMARY KEY,
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'PENDING'
		           CHECK(status IN ('PENDING','COMPLETED')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project_status ON tasks(project_id, status, id)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		user_id    BIGINT NOT NULL CHECK(user_id > 0),
		message    TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`,
}
