package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"store_assistant/internal/catalog"
	"store_assistant/internal/notifications"
	"store_assistant/internal/sales"

	"go.uber.org/zap"
)

const defaultListLimit = 10

type Service struct {
	repo     Repository
	products *catalog.Service
	notifier *notifications.Service
	logger   *zap.Logger
}

func NewService(repo Repository, products *catalog.Service, notifier *notifications.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		products: products,
		notifier: notifier,
		logger:   logger.Named("ledger"),
	}
}

// Record persists a completed sale and decrements stock for every item.
// Nothing is written if any product no longer has enough stock.
func (s *Service) Record(ctx context.Context, userID string, tx sales.Transaction) error {
	if len(tx.Items) == 0 {
		return ErrEmptyTransaction
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	if err := s.repo.Insert(ctx, userID, tx); err != nil {
		s.logger.Warn("record transaction failed", zap.String("transaction_id", tx.ID), zap.Error(err))
		return err
	}
	s.logger.Info("transaction recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(tx.Items)),
		zap.Float64("total", tx.Total),
	)

	s.notifyAfterSale(ctx, userID, tx)
	return nil
}

// notifyAfterSale raises the sale and low stock notifications. Failures are logged only; the sale is already committed.
func (s *Service) notifyAfterSale(ctx context.Context, userID string, tx sales.Transaction) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, userID, notifications.KindSaleRecorded, "Sale recorded",
		fmt.Sprintf("%d item(s), total $%.2f", len(tx.Items), tx.Total)); err != nil {
		s.logger.Warn("sale notification failed", zap.Error(err))
	}
	if s.products == nil {
		return
	}

	seen := make(map[string]struct{}, len(tx.Items))
	for _, item := range tx.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}

		p, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			s.logger.Warn("reload product failed", zap.String("product_id", item.ProductID), zap.Error(err))
			continue
		}
		if !p.LowOnStock() {
			continue
		}
		msg := fmt.Sprintf("%s is down to %s %s", p.Name, trimFloat(p.Quantity), p.Unit)
		if _, err := s.notifier.Notify(ctx, userID, notifications.KindLowStock, "Low stock", msg); err != nil {
			s.logger.Warn("low stock notification failed", zap.Error(err))
		}
	}
}

func (s *Service) Get(ctx context.Context, id string) (*sales.Transaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]*sales.Transaction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, userID, limit)
}

// Summary totals the transactions created in [from, to].
func (s *Service) Summary(ctx context.Context, userID string, from, to time.Time) (Summary, error) {
	if to.Before(from) {
		from, to = to, from
	}
	return s.repo.Summary(ctx, userID, from, to)
}

func trimFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
