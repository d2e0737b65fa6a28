package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	ListByUser(ctx context.Context, userID string) ([]*Product, error)
	Search(ctx context.Context, userID, query string, limit int) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	AdjustQuantity(ctx context.Context, id string, delta float64) (*Product, error)
}
