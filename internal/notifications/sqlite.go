package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type sqliteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) Repository {
	return &sqliteRepository{db: db}
}

type notificationRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Kind      string `db:"kind"`
	Title     string `db:"title"`
	Message   string `db:"message"`
	IsRead    bool   `db:"is_read"`
	CreatedAt int64  `db:"created_at"`
}

func (r notificationRow) toNotification() *Notification {
	return &Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Kind:      Kind(r.Kind),
		Title:     r.Title,
		Message:   r.Message,
		Read:      r.IsRead,
		CreatedAt: time.UnixMilli(r.CreatedAt),
	}
}

func (r *sqliteRepository) Create(ctx context.Context, n *Notification) error {
	row := notificationRow{
		ID:        n.ID,
		UserID:    n.UserID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.Read,
		CreatedAt: n.CreatedAt.UnixMilli(),
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notifications (id, user_id, kind, title, message, is_read, created_at)
		VALUES (:id, :user_id, :kind, :title, :message, :is_read, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *sqliteRepository) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*Notification, error) {
	query := `SELECT id, user_id, kind, title, message, is_read, created_at FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]*Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toNotification())
	}
	return out, nil
}

func (r *sqliteRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.RowsAffected()
}
