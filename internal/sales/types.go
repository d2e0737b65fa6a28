package sales

import "time"

// TaxRate is applied to the subtotal of every receipt.
const TaxRate = 0.15

// priceTolerance is the allowed relative difference between an entered price and the catalog price.
const priceTolerance = 0.10

type InventoryRecord struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
}

type ParsedSaleItem struct {
	Quantity     float64 `json:"quantity"`
	ProductName  string  `json:"product_name"`
	UnitPrice    float64 `json:"unit_price"`
	OriginalText string  `json:"original_text"`
}

type ValidatedSaleItem struct {
	ParsedSaleItem
	StockItem    *InventoryRecord `json:"stock_item,omitempty"`
	IsValid      bool             `json:"is_valid"`
	ErrorMessage string           `json:"error_message,omitempty"`
	TotalPrice   float64          `json:"total_price"`
}

// UnparsedClause is a fragment of sales text that matched none of the supported shapes.
type UnparsedClause struct {
	Text string `json:"text"`
}

type SalesReceipt struct {
	Items    []ValidatedSaleItem `json:"items"`
	Subtotal float64             `json:"subtotal"`
	Tax      float64             `json:"tax"`
	TaxRate  float64             `json:"tax_rate"`
	Total    float64             `json:"total"`
	IsValid  bool                `json:"is_valid"`
	Errors   []string            `json:"errors,omitempty"`
	Unparsed []UnparsedClause    `json:"unparsed,omitempty"`
}

// Complete reports whether the receipt can be recorded: every item validated and no clause was dropped.
func (r SalesReceipt) Complete() bool {
	return r.IsValid && len(r.Unparsed) == 0 && len(r.Items) > 0
}

type TransactionItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
	Unit      string  `json:"unit,omitempty"`
}

type Transaction struct {
	ID            string            `json:"id"`
	CashierName   string            `json:"cashier_name"`
	Items         []TransactionItem `json:"items"`
	Subtotal      float64           `json:"subtotal"`
	Tax           float64           `json:"tax"`
	TaxRate       float64           `json:"tax_rate"`
	Total         float64           `json:"total"`
	PaymentMethod string            `json:"payment_method"`
	Status        string            `json:"status"`
	Date          string            `json:"date"`
	Time          string            `json:"time"`
	CreatedAt     time.Time         `json:"created_at"`
}
