package session

import (
	"context"
	"database/sql"
	"errors"
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

type recordRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Area      string `db:"area"`
	IsActive  bool   `db:"is_active"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r recordRow) toRecord() Record {
	return Record{
		ID:        r.ID,
		UserID:    r.UserID,
		Area:      Area(r.Area),
		IsActive:  r.IsActive,
		CreatedAt: time.UnixMilli(r.CreatedAt),
		UpdatedAt: time.UnixMilli(r.UpdatedAt),
	}
}

func (r *sqliteRepository) Latest(ctx context.Context, userID string, area Area) (Record, error) {
	var row recordRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, user_id, area, is_active, created_at, updated_at
		FROM sessions
		WHERE user_id = ? AND area = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`, userID, string(area))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query latest session: %w", err)
	}
	return row.toRecord(), nil
}

func (r *sqliteRepository) Create(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, area, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, string(rec.Area), rec.IsActive, rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *sqliteRepository) Reactivate(ctx context.Context, id string, at time.Time) error {
	return r.setActive(ctx, id, true, at)
}

func (r *sqliteRepository) Deactivate(ctx context.Context, id string, at time.Time) error {
	return r.setActive(ctx, id, false, at)
}

func (r *sqliteRepository) setActive(ctx context.Context, id string, active bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET is_active = ?, updated_at = ? WHERE id = ?`, active, at.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) DeactivateAll(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET is_active = 0, updated_at = ? WHERE user_id = ? AND is_active = 1`, at.UnixMilli(), userID)
	if err != nil {
		return fmt.Errorf("deactivate sessions: %w", err)
	}
	return nil
}
