package sales

import "testing"

func TestParseSalesText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		quantity float64
		product  string
		price    float64
	}{
		{name: "at sign", input: "3 maputi @0.50", quantity: 3, product: "maputi", price: 0.50},
		{name: "at sign with dollar", input: "2 coke @ $0.75", quantity: 2, product: "coke", price: 0.75},
		{name: "x separator", input: "2x bar soap @1.20", quantity: 2, product: "bar soap", price: 1.20},
		{name: "spaced x", input: "4 x bread @ 1", quantity: 4, product: "bread", price: 1},
		{name: "at word", input: "1 cooking oil at $3.50", quantity: 1, product: "cooking oil", price: 3.50},
		{name: "at word each", input: "5 eggs at 0.20 each", quantity: 5, product: "eggs", price: 0.20},
		{name: "trailing price", input: "2 sugar 1.50", quantity: 2, product: "sugar", price: 1.50},
		{name: "trailing dollar price", input: "2 coke 500ml $0.90", quantity: 2, product: "coke 500ml", price: 0.90},
		{name: "name starting with x", input: "1 xylitol gum @0.30", quantity: 1, product: "xylitol gum", price: 0.30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ParseSalesText(tt.input)
			if len(items) != 1 {
				t.Fatalf("expected 1 item, got %d", len(items))
			}
			got := items[0]
			if got.Quantity != tt.quantity {
				t.Fatalf("expected quantity %v, got %v", tt.quantity, got.Quantity)
			}
			if got.ProductName != tt.product {
				t.Fatalf("expected product %q, got %q", tt.product, got.ProductName)
			}
			if got.UnitPrice != tt.price {
				t.Fatalf("expected price %v, got %v", tt.price, got.UnitPrice)
			}
			if got.OriginalText != tt.input {
				t.Fatalf("expected original text %q, got %q", tt.input, got.OriginalText)
			}
		})
	}
}

func TestParseSalesTextSplitsClauses(t *testing.T) {
	items := ParseSalesText("3 maputi @0.50, 1 coke @0.75\n2 soap at 1.20\n\n ,  ")
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[2].ProductName != "soap" {
		t.Fatalf("expected third item soap, got %q", items[2].ProductName)
	}
}

func TestParseSalesTextDropsUnparsable(t *testing.T) {
	items := ParseSalesText("hello there, 2 coke @0.75, coke please")
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ProductName != "coke" {
		t.Fatalf("unexpected item %q", items[0].ProductName)
	}
}

func TestParseClausesReportsDropped(t *testing.T) {
	items, unparsed := ParseClauses("hello there, 2 coke @0.75, coke please")
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if len(unparsed) != 2 {
		t.Fatalf("expected 2 unparsed clauses, got %d", len(unparsed))
	}
	if unparsed[0].Text != "hello there" || unparsed[1].Text != "coke please" {
		t.Fatalf("unexpected unparsed clauses: %+v", unparsed)
	}
}

func TestIsSalesTextCoversParsedShapes(t *testing.T) {
	for _, input := range []string{
		"3 maputi @0.50",
		"1 cooking oil at $3.50",
		"2 sugar 1.50",
		"2 coke 500ml $0.90",
	} {
		if len(ParseSalesText(input)) == 0 {
			t.Fatalf("expected %q to parse", input)
		}
		if !IsSalesText(input) {
			t.Errorf("%q parses but is not detected as sales text", input)
		}
	}
}

func TestIsSalesText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"3 maputi @0.50", true},
		{"2 bread at 1.00 each", true},
		{"sold 4 cokes today", true},
		{"2x soap", true},
		{"2 sugar 1.50", true},
		{"2 coke $0.75, 1 soap $1.20", true},
		{"1.5 rice 2\n3 salt 0.40", true},
		{"2 sugar please", false},
		{"what were my sales last week?", false},
		{"hello", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSalesText(tt.input); got != tt.want {
			t.Errorf("IsSalesText(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
