package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("profile")}
}

// Save validates and stores the profile, keeping the original creation time on updates.
func (s *Service) Save(ctx context.Context, p Profile) (*Profile, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	p.CreatedAt = now
	if existing, err := s.repo.Get(ctx, p.UserID); err == nil {
		p.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	p.UpdatedAt = now

	if err := s.repo.Upsert(ctx, &p); err != nil {
		return nil, err
	}
	s.logger.Info("profile saved", zap.String("user_id", p.UserID), zap.String("store", p.StoreName))
	return &p, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.Get(ctx, strings.TrimSpace(userID))
}

// CashierName returns the owner's name, or fallback when no profile is set up yet.
func (s *Service) CashierName(ctx context.Context, userID, fallback string) string {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("load profile failed", zap.String("user_id", userID), zap.Error(err))
		}
		return fallback
	}
	if p.OwnerName == "" {
		return fallback
	}
	return p.OwnerName
}

// LowStockThreshold returns the profile's default reorder level, zero when unset.
func (s *Service) LowStockThreshold(ctx context.Context, userID string) float64 {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return 0
	}
	return p.LowStockThreshold
}
