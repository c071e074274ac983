package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/unicoop/convenios-backend/internal/notifications/domain"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert stores a new unread notification
func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	const q = `
		INSERT INTO notifications (id, user_id, title, message, type, convenio_id, read)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING created_at
	`
	if err := r.db.QueryRowContext(ctx, q, n.ID, n.UserID, n.Title, n.Message, n.Type, n.ConvenioID).Scan(&n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	n.Read = false
	return nil
}

// ListByUser returns the recipient's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const q = `
		SELECT id, user_id, title, message, type, convenio_id, read, created_at
		FROM notifications
		WHERE user_id = $1 AND ($2 = false OR read = false)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, q, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Notification, 0, limit)
	for rows.Next() {
		var n domain.Notification
		var convenioID sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &convenioID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if convenioID.Valid {
			n.ConvenioID = &convenioID.String
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read. Only the recipient may do so.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	const q = `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
