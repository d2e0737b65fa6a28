package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageRepository interface {
	Append(ctx context.Context, m *Message) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*Message, error)
}

type sqliteMessages struct {
	db *sqlx.DB
}

func NewSQLiteMessageRepository(db *sqlx.DB) MessageRepository {
	return &sqliteMessages{db: db}
}

type messageRow struct {
	ID        string `db:"id"`
	SessionID string `db:"session_id"`
	UserID    string `db:"user_id"`
	Role      string `db:"role"`
	Content   string `db:"content"`
	CreatedAt int64  `db:"created_at"`
}

func (r *sqliteMessages) Append(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, user_id, role, content, created_at)
		VALUES (:id, :session_id, :user_id, :role, :content, :created_at)`, messageRow{
		ID:        m.ID,
		SessionID: m.SessionID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// ListBySession returns the newest limit messages of a session in chronological order.
func (r *sqliteMessages) ListBySession(ctx context.Context, sessionID string, limit int) ([]*Message, error) {
	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, user_id, role, content, created_at FROM (
			SELECT id, session_id, user_id, role, content, created_at, rowid AS seq
			FROM chat_messages WHERE session_id = ?
			ORDER BY created_at DESC, rowid DESC LIMIT ?
		) ORDER BY created_at ASC, seq ASC`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	out := make([]*Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, &Message{
			ID:        row.ID,
			SessionID: row.SessionID,
			UserID:    row.UserID,
			Role:      Role(row.Role),
			Content:   row.Content,
			CreatedAt: time.UnixMilli(row.CreatedAt),
		})
	}
	return out, nil
}
