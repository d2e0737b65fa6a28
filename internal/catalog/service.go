package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"store_assistant/internal/sales"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

var (
	ErrInvalidProduct = errors.New("invalid product")
	ErrEmptyQuery     = errors.New("search query is empty")
)

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("catalog")}
}

func (s *Service) Add(ctx context.Context, p Product) (*Product, error) {
	p.UserID = strings.TrimSpace(p.UserID)
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Unit = strings.TrimSpace(p.Unit)
	if p.Unit == "" {
		p.Unit = defaultUnit
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	now := time.Now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	s.logger.Info("product added",
		zap.String("product_id", p.ID),
		zap.String("user_id", p.UserID),
		zap.String("name", p.Name),
	)
	return &p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]*Product, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Search matches the query against name, brand, category and barcode, case-insensitively.
func (s *Service) Search(ctx context.Context, userID, query string, limit int) ([]*Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.repo.Search(ctx, userID, query, limit)
}

func (s *Service) Update(ctx context.Context, id string, upd Update) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.apply(p)
	p.Name = strings.TrimSpace(p.Name)
	if err := validate(*p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Restock adds delta units to the product's quantity; a negative delta removes stock.
func (s *Service) Restock(ctx context.Context, id string, delta float64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Quantity+delta < 0 {
		return nil, fmt.Errorf("%w: quantity cannot go below zero", ErrInvalidProduct)
	}
	return s.repo.AdjustQuantity(ctx, id, delta)
}

func (s *Service) LowStock(ctx context.Context, userID string) ([]*Product, error) {
	products, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	low := make([]*Product, 0)
	for _, p := range products {
		if p.LowOnStock() {
			low = append(low, p)
		}
	}
	return low, nil
}

// Inventory returns the user's catalog as the read-only snapshot the sales validator works on.
func (s *Service) Inventory(ctx context.Context, userID string) ([]sales.InventoryRecord, error) {
	products, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToInventory(products), nil
}

func ToInventory(products []*Product) []sales.InventoryRecord {
	records := make([]sales.InventoryRecord, 0, len(products))
	for _, p := range products {
		records = append(records, sales.InventoryRecord{
			ID:        p.ID,
			Name:      p.Name,
			Brand:     p.Brand,
			UnitPrice: p.UnitPrice,
			Quantity:  p.Quantity,
			Unit:      p.Unit,
		})
	}
	return records
}

func validate(p Product) error {
	switch {
	case p.UserID == "":
		return fmt.Errorf("%w: user id is required", ErrInvalidProduct)
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.UnitPrice < 0:
		return fmt.Errorf("%w: unit price cannot be negative", ErrInvalidProduct)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidProduct)
	case p.ReorderLevel < 0:
		return fmt.Errorf("%w: reorder level cannot be negative", ErrInvalidProduct)
	}
	return nil
}
