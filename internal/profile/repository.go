package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
}

type sqliteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) Repository {
	return &sqliteRepository{db: db}
}

type profileRow struct {
	UserID            string  `db:"user_id"`
	OwnerName         string  `db:"owner_name"`
	StoreName         string  `db:"store_name"`
	StoreAddress      string  `db:"store_address"`
	Phone             string  `db:"phone"`
	Currency          string  `db:"currency"`
	BusinessType      string  `db:"business_type"`
	LowStockThreshold float64 `db:"low_stock_threshold"`
	CreatedAt         int64   `db:"created_at"`
	UpdatedAt         int64   `db:"updated_at"`
}

func (r *sqliteRepository) Get(ctx context.Context, userID string) (*Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, `
		SELECT user_id, owner_name, store_name, store_address, phone, currency, business_type, low_stock_threshold, created_at, updated_at
		FROM profiles WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &Profile{
		UserID:            row.UserID,
		OwnerName:         row.OwnerName,
		StoreName:         row.StoreName,
		StoreAddress:      row.StoreAddress,
		Phone:             row.Phone,
		Currency:          row.Currency,
		BusinessType:      row.BusinessType,
		LowStockThreshold: row.LowStockThreshold,
		CreatedAt:         time.UnixMilli(row.CreatedAt),
		UpdatedAt:         time.UnixMilli(row.UpdatedAt),
	}, nil
}

func (r *sqliteRepository) Upsert(ctx context.Context, p *Profile) error {
	row := profileRow{
		UserID:            p.UserID,
		OwnerName:         p.OwnerName,
		StoreName:         p.StoreName,
		StoreAddress:      p.StoreAddress,
		Phone:             p.Phone,
		Currency:          p.Currency,
		BusinessType:      p.BusinessType,
		LowStockThreshold: p.LowStockThreshold,
		CreatedAt:         p.CreatedAt.UnixMilli(),
		UpdatedAt:         p.UpdatedAt.UnixMilli(),
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO profiles (user_id, owner_name, store_name, store_address, phone, currency, business_type, low_stock_threshold, created_at, updated_at)
		VALUES (:user_id, :owner_name, :store_name, :store_address, :phone, :currency, :business_type, :low_stock_threshold, :created_at, :updated_at)
		ON CONFLICT(user_id) DO UPDATE SET
			owner_name = excluded.owner_name,
			store_name = excluded.store_name,
			store_address = excluded.store_address,
			phone = excluded.phone,
			currency = excluded.currency,
			business_type = excluded.business_type,
			low_stock_threshold = excluded.low_stock_threshold,
			updated_at = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
