package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"store_assistant/internal/sales"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyTransaction  = errors.New("transaction has no items")
)

// Summary aggregates the recorded transactions of a period.
type Summary struct {
	Count    int     `json:"count" db:"count"`
	Subtotal float64 `json:"subtotal" db:"subtotal"`
	Tax      float64 `json:"tax" db:"tax"`
	Total    float64 `json:"total" db:"total"`
}

type Repository interface {
	// Insert stores the transaction and its items and takes the sold quantities out of stock, atomically.
	Insert(ctx context.Context, userID string, tx sales.Transaction) error
	Get(ctx context.Context, id string) (*sales.Transaction, error)
	List(ctx context.Context, userID string, limit int) ([]*sales.Transaction, error)
	Summary(ctx context.Context, userID string, from, to time.Time) (Summary, error)
}

type sqliteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) Repository {
	return &sqliteRepository{db: db}
}

type transactionRow struct {
	ID            string  `db:"id"`
	UserID        string  `db:"user_id"`
	CashierName   string  `db:"cashier_name"`
	Subtotal      float64 `db:"subtotal"`
	Tax           float64 `db:"tax"`
	TaxRate       float64 `db:"tax_rate"`
	Total         float64 `db:"total"`
	PaymentMethod string  `db:"payment_method"`
	Status        string  `db:"status"`
	CreatedAt     int64   `db:"created_at"`
}

type itemRow struct {
	TransactionID string  `db:"transaction_id"`
	ProductID     string  `db:"product_id"`
	Name          string  `db:"name"`
	Quantity      float64 `db:"quantity"`
	UnitPrice     float64 `db:"unit_price"`
	LineTotal     float64 `db:"line_total"`
	Unit          string  `db:"unit"`
}

func (r transactionRow) toTransaction() *sales.Transaction {
	created := time.UnixMilli(r.CreatedAt)
	return &sales.Transaction{
		ID:            r.ID,
		CashierName:   r.CashierName,
		Subtotal:      r.Subtotal,
		Tax:           r.Tax,
		TaxRate:       r.TaxRate,
		Total:         r.Total,
		PaymentMethod: r.PaymentMethod,
		Status:        r.Status,
		Date:          created.Format("2006-01-02"),
		Time:          created.Format("15:04:05"),
		CreatedAt:     created,
	}
}

func (r *sqliteRepository) Insert(ctx context.Context, userID string, t sales.Transaction) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := transactionRow{
		ID:            t.ID,
		UserID:        userID,
		CashierName:   t.CashierName,
		Subtotal:      t.Subtotal,
		Tax:           t.Tax,
		TaxRate:       t.TaxRate,
		Total:         t.Total,
		PaymentMethod: t.PaymentMethod,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt.UnixMilli(),
	}
	if _, err = tx.NamedExecContext(ctx, `
		INSERT INTO transactions (id, user_id, cashier_name, subtotal, tax, tax_rate, total, payment_method, status, created_at)
		VALUES (:id, :user_id, :cashier_name, :subtotal, :tax, :tax_rate, :total, :payment_method, :status, :created_at)`, row); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	for _, item := range t.Items {
		if _, err = tx.NamedExecContext(ctx, `
			INSERT INTO transaction_items (transaction_id, product_id, name, quantity, unit_price, line_total, unit)
			VALUES (:transaction_id, :product_id, :name, :quantity, :unit_price, :line_total, :unit)`, itemRow{
			TransactionID: t.ID,
			ProductID:     item.ProductID,
			Name:          item.Name,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			LineTotal:     item.LineTotal,
			Unit:          item.Unit,
		}); err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}

		var res sql.Result
		res, err = tx.ExecContext(ctx,
			`UPDATE products SET quantity = quantity - ?, updated_at = ? WHERE id = ? AND user_id = ? AND quantity >= ?`,
			item.Quantity, t.CreatedAt.UnixMilli(), item.ProductID, userID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		var n int64
		if n, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if n == 0 {
			err = fmt.Errorf("%w: %s", ErrInsufficientStock, item.Name)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *sqliteRepository) Get(ctx context.Context, id string) (*sales.Transaction, error) {
	var row transactionRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, user_id, cashier_name, subtotal, tax, tax_rate, total, payment_method, status, created_at
		FROM transactions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	t := row.toTransaction()
	if t.Items, err = r.items(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *sqliteRepository) List(ctx context.Context, userID string, limit int) ([]*sales.Transaction, error) {
	var rows []transactionRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, cashier_name, subtotal, tax, tax_rate, total, payment_method, status, created_at
		FROM transactions WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]*sales.Transaction, 0, len(rows))
	for _, row := range rows {
		t := row.toTransaction()
		if t.Items, err = r.items(ctx, row.ID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *sqliteRepository) Summary(ctx context.Context, userID string, from, to time.Time) (Summary, error) {
	var s Summary
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) AS count,
			COALESCE(SUM(subtotal), 0) AS subtotal,
			COALESCE(SUM(tax), 0) AS tax,
			COALESCE(SUM(total), 0) AS total
		FROM transactions
		WHERE user_id = ? AND created_at >= ? AND created_at <= ?`,
		userID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return Summary{}, fmt.Errorf("summarize transactions: %w", err)
	}
	return s, nil
}

func (r *sqliteRepository) items(ctx context.Context, transactionID string) ([]sales.TransactionItem, error) {
	var rows []itemRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT transaction_id, product_id, name, quantity, unit_price, line_total, unit
		FROM transaction_items WHERE transaction_id = ? ORDER BY id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	items := make([]sales.TransactionItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, sales.TransactionItem{
			ProductID: row.ProductID,
			Name:      row.Name,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
			LineTotal: row.LineTotal,
			Unit:      row.Unit,
		})
	}
	return items, nil
}
