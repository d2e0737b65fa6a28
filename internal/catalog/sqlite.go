package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

type sqliteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) Repository {
	return &sqliteRepository{db: db}
}

const productColumns = `id, user_id, name, brand, category, description, unit_price, quantity, unit, barcode, reorder_level, image_url, created_at, updated_at`

type productRow struct {
	ID           string  `db:"id"`
	UserID       string  `db:"user_id"`
	Name         string  `db:"name"`
	Brand        string  `db:"brand"`
	Category     string  `db:"category"`
	Description  string  `db:"description"`
	UnitPrice    float64 `db:"unit_price"`
	Quantity     float64 `db:"quantity"`
	Unit         string  `db:"unit"`
	Barcode      string  `db:"barcode"`
	ReorderLevel float64 `db:"reorder_level"`
	ImageURL     string  `db:"image_url"`
	CreatedAt    int64   `db:"created_at"`
	UpdatedAt    int64   `db:"updated_at"`
}

func toRow(p *Product) productRow {
	return productRow{
		ID:           p.ID,
		UserID:       p.UserID,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		Description:  p.Description,
		UnitPrice:    p.UnitPrice,
		Quantity:     p.Quantity,
		Unit:         p.Unit,
		Barcode:      p.Barcode,
		ReorderLevel: p.ReorderLevel,
		ImageURL:     p.ImageURL,
		CreatedAt:    p.CreatedAt.UnixMilli(),
		UpdatedAt:    p.UpdatedAt.UnixMilli(),
	}
}

func (r productRow) toProduct() *Product {
	return &Product{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Brand:        r.Brand,
		Category:     r.Category,
		Description:  r.Description,
		UnitPrice:    r.UnitPrice,
		Quantity:     r.Quantity,
		Unit:         r.Unit,
		Barcode:      r.Barcode,
		ReorderLevel: r.ReorderLevel,
		ImageURL:     r.ImageURL,
		CreatedAt:    time.UnixMilli(r.CreatedAt),
		UpdatedAt:    time.UnixMilli(r.UpdatedAt),
	}
}

func toProducts(rows []productRow) []*Product {
	out := make([]*Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toProduct())
	}
	return out
}

func (r *sqliteRepository) Create(ctx context.Context, p *Product) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (:id, :user_id, :name, :brand, :category, :description, :unit_price, :quantity, :unit, :barcode, :reorder_level, :image_url, :created_at, :updated_at)`,
		toRow(p))
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *sqliteRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return row.toProduct(), nil
}

func (r *sqliteRepository) ListByUser(ctx context.Context, userID string) ([]*Product, error) {
	var rows []productRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM products WHERE user_id = ? ORDER BY name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toProducts(rows), nil
}

func (r *sqliteRepository) Search(ctx context.Context, userID, query string, limit int) ([]*Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	var rows []productRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+productColumns+` FROM products
		WHERE user_id = ?
		  AND (lower(name) LIKE ? ESCAPE '\' OR lower(brand) LIKE ? ESCAPE '\'
		       OR lower(category) LIKE ? ESCAPE '\' OR barcode LIKE ? ESCAPE '\')
		ORDER BY name COLLATE NOCASE
		LIMIT ?`, userID, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return toProducts(rows), nil
}

func (r *sqliteRepository) Update(ctx context.Context, p *Product) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE products SET name = :name, brand = :brand, category = :category, description = :description,
			unit_price = :unit_price, quantity = :quantity, unit = :unit, barcode = :barcode,
			reorder_level = :reorder_level, image_url = :image_url, updated_at = :updated_at
		WHERE id = :id`, toRow(p))
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return requireAffected(res)
}

func (r *sqliteRepository) AdjustQuantity(ctx context.Context, id string, delta float64) (*Product, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET quantity = quantity + ?, updated_at = ? WHERE id = ?`,
		delta, time.Now().UnixMilli(), id)
	if err != nil {
		return nil, fmt.Errorf("adjust quantity: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
