package data

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLNotificationRepository persists notifications. Every read and write is
// scoped by the owning user's ID.
type SQLNotificationRepository struct {
	db *sqlx.DB
}

// NewSQLNotificationRepository creates a new SQLNotificationRepository.
func NewSQLNotificationRepository(db *sqlx.DB) *SQLNotificationRepository {
	return &SQLNotificationRepository{db: db}
}

// CreateNotification inserts an unread notification.
func (r *SQLNotificationRepository) CreateNotification(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO notifications (id, user_id, type, message, reference_id, is_read, created_at)
		VALUES (:id, :user_id, :type, :message, :reference_id, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("failed to execute create notification query: %w", err)
	}
	return nil
}

// GetNotificationsByUser returns the user's notifications, newest first. The
// post of a referenced comment is joined in so callers can tell which
// references are dangling.
func (r *SQLNotificationRepository) GetNotificationsByUser(ctx context.Context, userID string, limit int) ([]*Notification, error) {
	notifications := []*Notification{}
	query := r.db.Rebind(`SELECT n.id, n.user_id, n.type, n.message, n.reference_id, n.is_read, n.created_at,
			c.post_id AS reference_post_id
		FROM notifications n
		LEFT JOIN comments c ON c.id = n.reference_id
		WHERE n.user_id = ?
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT ?`)
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get notifications by user: %w", err)
	}
	return notifications, nil
}

// CountUnread returns the number of unread notifications for the user.
func (r *SQLNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`)
	if err := r.db.GetContext(ctx, &count, query, userID, false); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification as read. A notification owned by another
// user is left untouched.
func (r *SQLNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, true, id, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (r *SQLNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	query := r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`)
	res, err := r.db.ExecContext(ctx, query, true, userID, false)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
