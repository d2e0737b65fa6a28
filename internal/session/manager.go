package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const keyUserID = "session:user_id"

func idKey(area Area) string {
	return "session:" + string(area) + ":id"
}

func expiresKey(area Area) string {
	return "session:" + string(area) + ":expires_at"
}

// Manager hands out at most one live assistant session per area per calendar day.
// Ids are cached until the end of the local day and mirrored in the Repository.
type Manager struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
	now    func() time.Time

	// serializes get-or-create so one process never creates two sessions for the same area
	mu sync.Mutex
}

type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(repo Repository, cache Cache, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		repo:   repo,
		cache:  cache,
		logger: logger.Named("session"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CachedID returns the cached session id for the area. An expired id is reported as absent;
// reading it clears the whole cache and deactivates the cached user's sessions server-side.
func (m *Manager) CachedID(ctx context.Context, area Area) (string, bool) {
	id, ok := m.cache.Get(ctx, idKey(area))
	if !ok || id == "" {
		return "", false
	}

	expiresAt, ok := m.cachedExpiry(ctx, area)
	if !ok || m.now().After(expiresAt) {
		m.expire(ctx)
		return "", false
	}
	return id, true
}

// ExpiresAt reports when the cached session of the area expires.
func (m *Manager) ExpiresAt(ctx context.Context, area Area) (time.Time, bool) {
	if _, ok := m.cache.Get(ctx, idKey(area)); !ok {
		return time.Time{}, false
	}
	return m.cachedExpiry(ctx, area)
}

// GetOrCreate returns the live session id for the user and area. The most recent server-side
// session is reused (and reactivated when needed) before a new one is created.
func (m *Manager) GetOrCreate(ctx context.Context, userID string, area Area) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrMissingUserID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cachedUser, ok := m.cache.Get(ctx, keyUserID); ok && cachedUser != userID {
		m.logger.Info("cached session belongs to another user; clearing cache")
		m.clearAll(ctx)
	}

	if id, ok := m.CachedID(ctx, area); ok {
		return id, nil
	}

	now := m.now()
	rec, err := m.repo.Latest(ctx, userID, area)
	switch {
	case err == nil:
		if !rec.IsActive {
			if err := m.repo.Reactivate(ctx, rec.ID, now); err != nil {
				return "", err
			}
			m.logger.Info("session reactivated",
				zap.String("session_id", rec.ID),
				zap.String("user_id", userID),
				zap.String("area", string(area)),
			)
		}
	case errors.Is(err, ErrNotFound):
		rec = Record{
			ID:        uuid.NewString(),
			UserID:    userID,
			Area:      area,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := m.repo.Create(ctx, rec); err != nil {
			return "", err
		}
		m.logger.Info("session created",
			zap.String("session_id", rec.ID),
			zap.String("user_id", userID),
			zap.String("area", string(area)),
		)
	default:
		return "", err
	}

	m.cache.Set(ctx, keyUserID, userID)
	m.cache.Set(ctx, idKey(area), rec.ID)
	m.cache.Set(ctx, expiresKey(area), strconv.FormatInt(EndOfDay(now).UnixMilli(), 10))
	return rec.ID, nil
}

// End deactivates the area's session and drops it from the cache, regardless of expiry.
func (m *Manager) End(ctx context.Context, userID string, area Area) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.cache.Delete(ctx, idKey(area), expiresKey(area))

	now := m.now()
	if id, ok := m.cache.Get(ctx, idKey(area)); ok && id != "" {
		err := m.repo.Deactivate(ctx, id, now)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return nil
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	rec, err := m.repo.Latest(ctx, userID, area)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !rec.IsActive {
		return nil
	}
	return m.repo.Deactivate(ctx, rec.ID, now)
}

// Logout deactivates every session of the user and clears the whole cache.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.clearAll(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		cached, ok := m.cache.Get(ctx, keyUserID)
		if !ok {
			return nil
		}
		userID = cached
	}
	return m.repo.DeactivateAll(ctx, userID, m.now())
}

func (m *Manager) cachedExpiry(ctx context.Context, area Area) (time.Time, bool) {
	raw, ok := m.cache.Get(ctx, expiresKey(area))
	if !ok {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

func (m *Manager) expire(ctx context.Context) {
	userID, _ := m.cache.Get(ctx, keyUserID)
	m.clearAll(ctx)
	if userID == "" {
		return
	}
	if err := m.repo.DeactivateAll(ctx, userID, m.now()); err != nil {
		m.logger.Warn("deactivate expired sessions failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	m.logger.Info("cached session expired", zap.String("user_id", userID))
}

func (m *Manager) clearAll(ctx context.Context) {
	keys := []string{keyUserID}
	for _, area := range Areas {
		keys = append(keys, idKey(area), expiresKey(area))
	}
	m.cache.Delete(ctx, keys...)
}

// EndOfDay returns the last instant of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
