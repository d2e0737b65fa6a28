package sales

import (
	"strings"
	"testing"
)

func testInventory() []InventoryRecord {
	return []InventoryRecord{
		{ID: "p1", Name: "Coca-Cola", UnitPrice: 0.75, Quantity: 10},
		{ID: "p2", Name: "Bar Soap", UnitPrice: 1.20, Quantity: 5},
		{ID: "p3", Name: "Popcorn", Brand: "Zimbo", UnitPrice: 0.50, Quantity: 20},
		{ID: "p4", Name: "Cooking Oil 2L", Brand: "Olivine", UnitPrice: 1.00, Quantity: 3},
	}
}

func TestValidateSaleItemsMatchChain(t *testing.T) {
	tests := []struct {
		name   string
		search string
		wantID string
	}{
		{name: "exact case insensitive", search: "bar soap", wantID: "p2"},
		{name: "query inside catalog name", search: "soap", wantID: "p2"},
		{name: "catalog name inside query", search: "large popcorn bag", wantID: "p3"},
		{name: "brand and name", search: "olivine cooking", wantID: "p4"},
		{name: "alias", search: "coke", wantID: "p1"},
		{name: "alias for popcorn", search: "maputi", wantID: "p3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []ParsedSaleItem{{Quantity: 1, ProductName: tt.search, UnitPrice: 0}}
			rec, ok := findInventoryRecord(items[0].ProductName, testInventory())
			if !ok {
				t.Fatalf("expected %q to match", tt.search)
			}
			if rec.ID != tt.wantID {
				t.Fatalf("expected %s, got %s", tt.wantID, rec.ID)
			}
		})
	}
}

func TestValidateSaleItemsNotFound(t *testing.T) {
	got := ValidateSaleItems([]ParsedSaleItem{{Quantity: 1, ProductName: "caviar", UnitPrice: 90}}, testInventory())
	if got[0].IsValid {
		t.Fatalf("expected invalid item")
	}
	if got[0].StockItem != nil {
		t.Fatalf("expected no stock item")
	}
	if !strings.Contains(got[0].ErrorMessage, "not found") {
		t.Fatalf("unexpected message %q", got[0].ErrorMessage)
	}
}

func TestValidateSaleItemsStockBoundary(t *testing.T) {
	exact := ValidateSaleItems([]ParsedSaleItem{{Quantity: 5, ProductName: "soap", UnitPrice: 1.20}}, testInventory())
	if !exact[0].IsValid {
		t.Fatalf("expected requesting all stock to validate, got %q", exact[0].ErrorMessage)
	}

	over := ValidateSaleItems([]ParsedSaleItem{{Quantity: 6, ProductName: "soap", UnitPrice: 1.20}}, testInventory())
	if over[0].IsValid {
		t.Fatalf("expected one more than available to fail")
	}
	if !strings.Contains(strings.ToLower(over[0].ErrorMessage), "insufficient stock") {
		t.Fatalf("unexpected message %q", over[0].ErrorMessage)
	}
}

func TestValidateSaleItemsPriceBoundary(t *testing.T) {
	tests := []struct {
		price float64
		valid bool
	}{
		{price: 1.10, valid: true},
		{price: 0.90, valid: true},
		{price: 1.1001, valid: false},
		{price: 0.8999, valid: false},
	}
	for _, tt := range tests {
		got := ValidateSaleItems([]ParsedSaleItem{{Quantity: 1, ProductName: "Cooking Oil 2L", UnitPrice: tt.price}}, testInventory())
		if got[0].IsValid != tt.valid {
			t.Fatalf("price %v: expected valid=%v, got %v (%s)", tt.price, tt.valid, got[0].IsValid, got[0].ErrorMessage)
		}
		if !tt.valid && !strings.Contains(strings.ToLower(got[0].ErrorMessage), "price mismatch") {
			t.Fatalf("price %v: unexpected message %q", tt.price, got[0].ErrorMessage)
		}
	}
}

func TestValidateSaleItemsReportsFirstProblemOnly(t *testing.T) {
	got := ValidateSaleItems([]ParsedSaleItem{{Quantity: 50, ProductName: "soap", UnitPrice: 9.99}}, testInventory())
	if got[0].IsValid {
		t.Fatalf("expected invalid item")
	}
	if strings.Contains(strings.ToLower(got[0].ErrorMessage), "price") {
		t.Fatalf("expected stock error only, got %q", got[0].ErrorMessage)
	}
}

func TestValidateSaleItemsTotalPrice(t *testing.T) {
	got := ValidateSaleItems([]ParsedSaleItem{{Quantity: 3, ProductName: "maputi", UnitPrice: 0.50}}, testInventory())
	if !got[0].IsValid {
		t.Fatalf("unexpected error %q", got[0].ErrorMessage)
	}
	if got[0].TotalPrice != 1.5 {
		t.Fatalf("expected total 1.5, got %v", got[0].TotalPrice)
	}
	if got[0].StockItem == nil || got[0].StockItem.ID != "p3" {
		t.Fatalf("expected popcorn stock item")
	}
}

func TestPriceMismatchShowsEnteredPrecision(t *testing.T) {
	got := ValidateSaleItems([]ParsedSaleItem{{Quantity: 1, ProductName: "Cooking Oil 2L", UnitPrice: 1.1001}}, testInventory())
	if got[0].IsValid {
		t.Fatalf("expected price mismatch")
	}
	if !strings.Contains(got[0].ErrorMessage, "entered $1.1001") {
		t.Fatalf("entered price rounded away: %q", got[0].ErrorMessage)
	}

	got = ValidateSaleItems([]ParsedSaleItem{{Quantity: 1, ProductName: "Cooking Oil 2L", UnitPrice: 2}}, testInventory())
	if !strings.Contains(got[0].ErrorMessage, "entered $2.00, catalog price $1.00") {
		t.Fatalf("unexpected message %q", got[0].ErrorMessage)
	}
}

func TestCheckCombinedStock(t *testing.T) {
	items := ValidateSaleItems(ParseSalesText("6 coke @0.75, 6 coca-cola @0.75, 2 soap @1.20"), testInventory())
	for _, item := range items {
		if !item.IsValid {
			t.Fatalf("each line should pass alone: %q", item.ErrorMessage)
		}
	}

	problems := CheckCombinedStock(items)
	if len(problems) != 1 {
		t.Fatalf("expected one oversold product, got %v", problems)
	}
	if !strings.Contains(problems[0], "Coca-Cola") || !strings.Contains(problems[0], "requested 12 in total, available 10") {
		t.Fatalf("unexpected message %q", problems[0])
	}

	if got := CheckCombinedStock(ValidateSaleItems(ParseSalesText("5 coke @0.75, 5 coca-cola @0.75"), testInventory())); len(got) != 0 {
		t.Fatalf("exactly all stock must pass, got %v", got)
	}
}
