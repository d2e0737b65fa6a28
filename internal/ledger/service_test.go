package ledger

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"store_assistant/internal/catalog"
	"store_assistant/internal/notifications"
	"store_assistant/internal/sales"
	"store_assistant/internal/store"
)

type fixture struct {
	ledger   *Service
	products *catalog.Service
	notifier *notifications.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := store.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	products := catalog.NewService(catalog.NewSQLiteRepository(db), nil)
	notifier := notifications.NewService(notifications.NewSQLiteRepository(db), nil)
	return fixture{
		ledger:   NewService(NewSQLiteRepository(db), products, notifier, nil),
		products: products,
		notifier: notifier,
	}
}

func (f fixture) add(t *testing.T, name string, price, qty, reorder float64) *catalog.Product {
	t.Helper()
	p, err := f.products.Add(context.Background(), catalog.Product{
		UserID: "u1", Name: name, UnitPrice: price, Quantity: qty, ReorderLevel: reorder,
	})
	if err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	return p
}

func (f fixture) checkout(t *testing.T, text string) sales.Transaction {
	t.Helper()
	inventory, err := f.products.Inventory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	receipt := sales.GenerateSalesReceipt(sales.ValidateSaleItems(sales.ParseSalesText(text), inventory))
	if !receipt.Complete() {
		t.Fatalf("receipt not complete: %v", receipt.Errors)
	}
	return sales.CreateTransactionFromReceipt(receipt, "Tendai")
}

func TestRecordDecrementsStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	soap := f.add(t, "Bar Soap", 1.20, 5, 1)
	coke := f.add(t, "Coca-Cola", 0.75, 10, 2)

	tx := f.checkout(t, "2 soap @1.20, 3 coke @0.75")
	if err := f.ledger.Record(ctx, "u1", tx); err != nil {
		t.Fatalf("record: %v", err)
	}

	gotSoap, _ := f.products.Get(ctx, soap.ID)
	gotCoke, _ := f.products.Get(ctx, coke.ID)
	if gotSoap.Quantity != 3 || gotCoke.Quantity != 7 {
		t.Fatalf("unexpected stock soap=%v coke=%v", gotSoap.Quantity, gotCoke.Quantity)
	}

	stored, err := f.ledger.Get(ctx, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Items) != 2 || stored.CashierName != "Tendai" {
		t.Fatalf("unexpected stored transaction %+v", stored)
	}
	if math.Abs(stored.Total-tx.Total) > 1e-9 {
		t.Fatalf("expected total %v, got %v", tx.Total, stored.Total)
	}
}

func TestRecordRollsBackOnInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	soap := f.add(t, "Bar Soap", 1.20, 5, 0)
	f.add(t, "Coca-Cola", 0.75, 10, 0)

	tx := f.checkout(t, "2 soap @1.20, 3 coke @0.75")
	// stock moves between validation and recording
	if _, err := f.products.Restock(ctx, tx.Items[1].ProductID, -9); err != nil {
		t.Fatalf("restock: %v", err)
	}

	err := f.ledger.Record(ctx, "u1", tx)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	gotSoap, _ := f.products.Get(ctx, soap.ID)
	if gotSoap.Quantity != 5 {
		t.Fatalf("expected soap decrement rolled back, got %v", gotSoap.Quantity)
	}
	if _, err := f.ledger.Get(ctx, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no stored transaction, got %v", err)
	}
}

func TestRecordRaisesNotifications(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "Bar Soap", 1.20, 5, 3)
	f.add(t, "Coca-Cola", 0.75, 10, 2)

	if err := f.ledger.Record(ctx, "u1", f.checkout(t, "2 soap @1.20, 1 coke @0.75")); err != nil {
		t.Fatalf("record: %v", err)
	}

	list, err := f.notifier.List(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	kinds := map[notifications.Kind]int{}
	for _, n := range list {
		kinds[n.Kind]++
	}
	if kinds[notifications.KindSaleRecorded] != 1 {
		t.Fatalf("expected a sale notification, got %v", kinds)
	}
	if kinds[notifications.KindLowStock] != 1 {
		t.Fatalf("expected one low stock notification, got %v", kinds)
	}
}

func TestRecordEmpty(t *testing.T) {
	f := newFixture(t)
	if err := f.ledger.Record(context.Background(), "u1", sales.Transaction{ID: "x"}); !errors.Is(err, ErrEmptyTransaction) {
		t.Fatalf("expected ErrEmptyTransaction, got %v", err)
	}
}

func TestListAndSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "Bar Soap", 1.00, 50, 0)

	for i := 0; i < 3; i++ {
		if err := f.ledger.Record(ctx, "u1", f.checkout(t, "2 soap @1.00")); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	list, err := f.ledger.List(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(list))
	}

	now := time.Now()
	summary, err := f.ledger.Summary(ctx, "u1", now.Add(time.Hour), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Count != 3 {
		t.Fatalf("expected 3 transactions, got %d", summary.Count)
	}
	if math.Abs(summary.Subtotal-6) > 1e-9 || math.Abs(summary.Total-6.9) > 1e-9 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	empty, err := f.ledger.Summary(ctx, "u2", now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if empty.Count != 0 || empty.Total != 0 {
		t.Fatalf("expected empty summary, got %+v", empty)
	}
}
