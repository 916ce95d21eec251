package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	notifications "github.com/Hossam-Nazih/gestion-de-maintenance/internal/notifications/domain"
)

// NotificationRepository is a Postgres journal for notifications.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository constructs a repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// EnsureSchema creates the notifications table when missing.
func (r *NotificationRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("notification repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	equipment_id TEXT NOT NULL,
	equipment_name TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'normal',
	read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return err
}

// Insert appends a journal entry.
func (r *NotificationRepository) Insert(ctx context.Context, n *notifications.Notification) error {
	if r == nil || r.db == nil {
		return errors.New("notification repo: nil db")
	}
	if n == nil {
		return errors.New("notification repo: nil notification")
	}
	if err := n.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO notifications (
	id, type, title, message, equipment_id, equipment_name,
	status, priority, read, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6,
	$7, $8, $9, $10
)`, n.ID, n.Type, n.Title, n.Message, n.EquipmentID, n.EquipmentName,
		n.Status, n.Priority, n.Read, n.CreatedAt)
	return err
}

// List returns entries passing the filter, newest first.
func (r *NotificationRepository) List(ctx context.Context, filter notifications.Filter, limit int) ([]notifications.Notification, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("notification repo: nil db")
	}
	if limit <= 0 {
		limit = 100
	}
	query := `
SELECT id, type, title, message, equipment_id, equipment_name,
	status, priority, read, created_at
FROM notifications`
	switch filter {
	case notifications.FilterUnread:
		query += `
WHERE read = FALSE`
	case notifications.FilterUrgent:
		query += `
WHERE priority IN ('high', 'critical')`
	case notifications.FilterCompleted:
		query += `
WHERE status IN ('TERMINEE', 'REPARE_RECENT')`
	}
	query += fmt.Sprintf(`
ORDER BY created_at DESC
LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []notifications.Notification
	for rows.Next() {
		var n notifications.Notification
		if err := rows.Scan(
			&n.ID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.EquipmentID,
			&n.EquipmentName,
			&n.Status,
			&n.Priority,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		n.CreatedAt = n.CreatedAt.UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead marks one entry as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("notification repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every entry as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("notification repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE notifications SET read = TRUE WHERE read = FALSE`)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// Counts returns the tab badge counters.
func (r *NotificationRepository) Counts(ctx context.Context) (notifications.Counts, error) {
	var c notifications.Counts
	if r == nil || r.db == nil {
		return c, errors.New("notification repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE read = FALSE),
	COUNT(*) FILTER (WHERE priority IN ('high', 'critical')),
	COUNT(*) FILTER (WHERE status IN ('TERMINEE', 'REPARE_RECENT'))
FROM notifications`)
	if err := row.Scan(&c.Total, &c.Unread, &c.Urgent, &c.Completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, nil
		}
		return c, err
	}
	return c, nil
}
