package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"store_assistant/internal/assistant"
	"store_assistant/internal/catalog"
	"store_assistant/internal/ledger"
	"store_assistant/internal/notifications"
	"store_assistant/internal/profile"
	"store_assistant/internal/sales"
)

type jsonAnswer struct {
	SessionID   string                     `json:"session_id"`
	AnswerText  string                     `json:"answer_text"`
	Receipt     *sales.SalesReceipt        `json:"receipt,omitempty"`
	Transaction *sales.Transaction         `json:"transaction,omitempty"`
	ToolCalls   []assistant.ToolCallRecord `json:"tool_calls,omitempty"`
}

type jsonSummary struct {
	Period string `json:"period"`
	From   string `json:"from"`
	To     string `json:"to"`
	ledger.Summary
}

func (r *Runner) writeJSON(v any) error {
	return json.NewEncoder(r.out).Encode(v)
}

func (r *Runner) writeStatus(text string) error {
	if r.options.JSON {
		return r.writeJSON(map[string]string{"status": text})
	}
	fmt.Fprintln(r.out, text)
	return nil
}

func (r *Runner) writeAnswer(answer assistant.Answer) error {
	if r.options.JSON {
		return r.writeJSON(jsonAnswer{
			SessionID:   answer.SessionID,
			AnswerText:  strings.TrimSpace(answer.Text),
			Receipt:     answer.Receipt,
			Transaction: answer.Transaction,
			ToolCalls:   answer.ToolCalls,
		})
	}
	text := strings.TrimSpace(answer.Text)
	if text == "" {
		text = "(empty response)"
	}
	fmt.Fprintln(r.out, text)
	return nil
}

func (r *Runner) writeProducts(products []*catalog.Product, empty string) error {
	if r.options.JSON {
		return r.writeJSON(products)
	}
	if len(products) == 0 {
		fmt.Fprintln(r.out, empty)
		return nil
	}
	for i, p := range products {
		name := p.Name
		if p.Brand != "" {
			name = p.Brand + " " + p.Name
		}
		fmt.Fprintf(r.out, "%d) %s, $%.2f, %s %s", i+1, name, p.UnitPrice, formatNumber(p.Quantity), p.Unit)
		if p.LowOnStock() {
			fmt.Fprint(r.out, " [low]")
		}
		fmt.Fprintln(r.out)
	}
	return nil
}

func (r *Runner) writeTransactions(list []*sales.Transaction) error {
	if r.options.JSON {
		return r.writeJSON(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(r.out, "No sales recorded yet.")
		return nil
	}
	for i, tx := range list {
		fmt.Fprintf(r.out, "%d) %s %s  %d item(s)  $%.2f  by %s\n", i+1, tx.Date, tx.Time, len(tx.Items), tx.Total, tx.CashierName)
	}
	return nil
}

func (r *Runner) writeSummary(period periodRange, s ledger.Summary) error {
	if r.options.JSON {
		return r.writeJSON(jsonSummary{
			Period:  period.Label,
			From:    period.From.Format(time.RFC3339),
			To:      period.To.Format(time.RFC3339),
			Summary: s,
		})
	}
	fmt.Fprintf(r.out, "Sales %s: %d sale(s)\n", period.Label, s.Count)
	fmt.Fprintf(r.out, "Subtotal: $%.2f\nTax: $%.2f\nTotal: $%.2f\n", s.Subtotal, s.Tax, s.Total)
	return nil
}

func (r *Runner) writeNotifications(list []*notifications.Notification) error {
	if r.options.JSON {
		return r.writeJSON(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(r.out, "No unread notifications.")
		return nil
	}
	for i, n := range list {
		fmt.Fprintf(r.out, "%d) [%s] %s: %s\n", i+1, n.Kind, n.Title, n.Message)
	}
	return nil
}

func (r *Runner) writeProfile(p *profile.Profile) error {
	if r.options.JSON {
		return r.writeJSON(p)
	}
	fmt.Fprintf(r.out, "Store: %s\nOwner: %s\n", p.StoreName, p.OwnerName)
	if p.StoreAddress != "" {
		fmt.Fprintf(r.out, "Address: %s\n", p.StoreAddress)
	}
	if p.Phone != "" {
		fmt.Fprintf(r.out, "Phone: %s\n", p.Phone)
	}
	if p.BusinessType != "" {
		fmt.Fprintf(r.out, "Type: %s\n", p.BusinessType)
	}
	fmt.Fprintf(r.out, "Currency: %s\nLow stock threshold: %s\n", p.Currency, formatNumber(p.LowStockThreshold))
	return nil
}

func formatNumber(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	const maxLen = 120
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
