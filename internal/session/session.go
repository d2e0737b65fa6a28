package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Area partitions assistant sessions; each area keeps its own session id.
type Area string

const (
	AreaMain Area = "main"
	AreaMisc Area = "misc"
)

// Areas lists every known area; clearing the cache walks all of them.
var Areas = []Area{AreaMain, AreaMisc}

var (
	ErrNotFound      = errors.New("session not found")
	ErrMissingUserID = errors.New("user id is required")
	ErrUnknownArea   = errors.New("unknown session area")
)

func ParseArea(value string) (Area, error) {
	switch Area(strings.ToLower(strings.TrimSpace(value))) {
	case AreaMain, "":
		return AreaMain, nil
	case AreaMisc, "misc-activities", "misc_activities":
		return AreaMisc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownArea, value)
	}
}

// Record is the server-side session document.
type Record struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Area      Area      `db:"area" json:"area"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"-" json:"created_at"`
	UpdatedAt time.Time `db:"-" json:"updated_at"`
}

type Repository interface {
	// Latest returns the most recently created session for the user and area, or ErrNotFound.
	Latest(ctx context.Context, userID string, area Area) (Record, error)
	Create(ctx context.Context, rec Record) error
	Reactivate(ctx context.Context, id string, at time.Time) error
	Deactivate(ctx context.Context, id string, at time.Time) error
	DeactivateAll(ctx context.Context, userID string, at time.Time) error
}

// Cache is client-local ephemeral key/value storage. Implementations never fail; errors are logged and treated as misses.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Delete(ctx context.Context, keys ...string)
}
