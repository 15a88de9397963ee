package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/buildtrack/internal/db"
	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/google/uuid"
)

// SQLNotificationRepo is the durable notification log.
type SQLNotificationRepo struct {
	db db.DBTX
}

func NewSQLNotificationRepo(conn db.DBTX) *SQLNotificationRepo {
	return &SQLNotificationRepo{db: conn}
}

func (r *SQLNotificationRepo) Persist(ctx context.Context, userID int64, message string) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:          uuid.New().String(),
		RecipientID: userID,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}
	query := `INSERT INTO notifications (id, user_id, message, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, n.ID, n.RecipientID, n.Message, formatTimestamp(n.CreatedAt)); err != nil {
		return nil, fmt.Errorf("inserting notification for user %d: %w", userID, err)
	}
	return n, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *SQLNotificationRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.Notification, error) {
	query := `SELECT id, user_id, message, created_at FROM notifications
		WHERE user_id = ? ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var createdAtStr string
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Message, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		if n.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}
	return out, nil
}
