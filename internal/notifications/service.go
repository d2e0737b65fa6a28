package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultListLimit = 20

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("notifications")}
}

func (s *Service) Notify(ctx context.Context, userID string, kind Kind, title, message string) (*Notification, error) {
	n := &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.logger.Debug("notification created",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
		zap.String("title", title),
	)
	return n, nil
}

func (s *Service) ListUnread(ctx context.Context, userID string) ([]*Notification, error) {
	return s.repo.List(ctx, userID, true, defaultListLimit)
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]*Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, userID, false, limit)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("notifications marked read", zap.String("user_id", userID), zap.Int64("count", n))
	return n, nil
}
