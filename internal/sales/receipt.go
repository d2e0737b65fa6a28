package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	paymentCash         = "cash"
	transactionComplete = "completed"
)

// GenerateSalesReceipt totals the valid items and collects the errors of the invalid ones.
func GenerateSalesReceipt(items []ValidatedSaleItem) SalesReceipt {
	receipt := SalesReceipt{
		Items:   items,
		TaxRate: TaxRate,
	}

	for _, item := range items {
		if !item.IsValid {
			receipt.Errors = append(receipt.Errors, item.ErrorMessage)
			continue
		}
		receipt.Subtotal += item.TotalPrice
	}

	receipt.Tax = receipt.Subtotal * receipt.TaxRate
	receipt.Total = receipt.Subtotal + receipt.Tax
	receipt.IsValid = len(receipt.Errors) == 0
	return receipt
}

// FormatReceiptText renders a receipt for chat output.
func FormatReceiptText(receipt SalesReceipt) string {
	var b strings.Builder
	now := time.Now()

	b.WriteString("SALES RECEIPT\n")
	fmt.Fprintf(&b, "Date: %s %s\n", now.Format("02 Jan 2006"), now.Format("15:04"))
	b.WriteString(strings.Repeat("-", 32) + "\n")

	for _, item := range receipt.Items {
		name := item.ProductName
		if item.StockItem != nil {
			name = item.StockItem.Name
		}
		if item.IsValid {
			fmt.Fprintf(&b, "%s x %s @ $%.2f = $%.2f\n", formatQuantity(item.Quantity), name, item.UnitPrice, item.TotalPrice)
			continue
		}
		fmt.Fprintf(&b, "[!] %s: %s\n", item.OriginalText, item.ErrorMessage)
	}
	for _, clause := range receipt.Unparsed {
		fmt.Fprintf(&b, "[?] could not read %q\n", clause.Text)
	}

	b.WriteString(strings.Repeat("-", 32) + "\n")
	fmt.Fprintf(&b, "Subtotal: $%.2f\n", receipt.Subtotal)
	fmt.Fprintf(&b, "Tax (%.0f%%): $%.2f\n", receipt.TaxRate*100, receipt.Tax)
	fmt.Fprintf(&b, "Total: $%.2f\n", receipt.Total)

	if !receipt.IsValid {
		b.WriteString("\nErrors:\n")
		for _, msg := range receipt.Errors {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}
	return b.String()
}

// CreateTransactionFromReceipt maps the valid items of a receipt onto a transaction stamped with the current time.
func CreateTransactionFromReceipt(receipt SalesReceipt, cashierName string) Transaction {
	now := time.Now()
	tx := Transaction{
		ID:            uuid.NewString(),
		CashierName:   strings.TrimSpace(cashierName),
		Subtotal:      receipt.Subtotal,
		Tax:           receipt.Tax,
		TaxRate:       receipt.TaxRate,
		Total:         receipt.Total,
		PaymentMethod: paymentCash,
		Status:        transactionComplete,
		Date:          now.Format("2006-01-02"),
		Time:          now.Format("15:04:05"),
		CreatedAt:     now,
	}

	for _, item := range receipt.Items {
		if !item.IsValid || item.StockItem == nil {
			continue
		}
		tx.Items = append(tx.Items, TransactionItem{
			ProductID: item.StockItem.ID,
			Name:      item.StockItem.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.TotalPrice,
			Unit:      item.StockItem.Unit,
		})
	}
	return tx
}
