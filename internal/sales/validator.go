package sales

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const priceEpsilon = 1e-9

// productAliases maps shop-floor nicknames to a fragment of the catalog name.
var productAliases = map[string]string{
	"coke":      "coca-cola",
	"coca cola": "coca-cola",
	"maputi":    "popcorn",
	"mazoe":     "mazoe orange crush",
	"chibage":   "maize",
	"bread":     "loaf",
	"sugar":     "white sugar",
}

// ValidateSaleItems resolves each parsed item against the inventory snapshot and checks stock and price.
// Only the first problem found for an item is reported.
func ValidateSaleItems(items []ParsedSaleItem, inventory []InventoryRecord) []ValidatedSaleItem {
	validated := make([]ValidatedSaleItem, 0, len(items))
	for _, item := range items {
		validated = append(validated, validateItem(item, inventory))
	}
	return validated
}

// CheckCombinedStock sums the valid lines that resolved to the same product and reports every
// product whose combined quantity is more than its stock. Each line alone has already passed.
func CheckCombinedStock(items []ValidatedSaleItem) []string {
	var (
		order     []string
		requested = make(map[string]float64)
		records   = make(map[string]*InventoryRecord)
	)
	for _, item := range items {
		if !item.IsValid || item.StockItem == nil {
			continue
		}
		id := item.StockItem.ID
		if _, seen := records[id]; !seen {
			order = append(order, id)
			records[id] = item.StockItem
		}
		requested[id] += item.Quantity
	}

	var problems []string
	for _, id := range order {
		rec := records[id]
		if requested[id] > rec.Quantity {
			problems = append(problems, fmt.Sprintf("Insufficient stock for %s: requested %s in total, available %s",
				rec.Name, formatQuantity(requested[id]), formatQuantity(rec.Quantity)))
		}
	}
	return problems
}

func validateItem(item ParsedSaleItem, inventory []InventoryRecord) ValidatedSaleItem {
	result := ValidatedSaleItem{
		ParsedSaleItem: item,
		TotalPrice:     item.Quantity * item.UnitPrice,
	}

	record, ok := findInventoryRecord(item.ProductName, inventory)
	if !ok {
		result.ErrorMessage = fmt.Sprintf("Product %q not found in inventory", item.ProductName)
		return result
	}
	result.StockItem = &record

	if record.Quantity < item.Quantity {
		result.ErrorMessage = fmt.Sprintf("Insufficient stock for %s: requested %s, available %s",
			record.Name, formatQuantity(item.Quantity), formatQuantity(record.Quantity))
		return result
	}

	if !priceWithinTolerance(item.UnitPrice, record.UnitPrice) {
		result.ErrorMessage = fmt.Sprintf("Price mismatch for %s: entered $%s, catalog price $%.2f",
			record.Name, formatPrice(item.UnitPrice), record.UnitPrice)
		return result
	}

	result.IsValid = true
	return result
}

func priceWithinTolerance(entered, catalog float64) bool {
	return math.Abs(entered-catalog) <= math.Abs(catalog)*priceTolerance+priceEpsilon
}

// findInventoryRecord walks the match chain: exact name, substring either way,
// brand plus name, then the alias table.
func findInventoryRecord(name string, inventory []InventoryRecord) (InventoryRecord, bool) {
	needle := normalizeName(name)
	if needle == "" {
		return InventoryRecord{}, false
	}

	for _, rec := range inventory {
		if normalizeName(rec.Name) == needle {
			return rec, true
		}
	}

	for _, rec := range inventory {
		candidate := normalizeName(rec.Name)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return rec, true
		}
	}

	for _, rec := range inventory {
		if rec.Brand == "" {
			continue
		}
		full := normalizeName(rec.Brand + " " + rec.Name)
		if strings.Contains(full, needle) {
			return rec, true
		}
	}

	if alias, ok := productAliases[needle]; ok {
		for _, rec := range inventory {
			if strings.Contains(normalizeName(rec.Name), alias) {
				return rec, true
			}
		}
	}

	return InventoryRecord{}, false
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// formatPrice keeps two decimals unless that would hide a finer entered amount.
func formatPrice(p float64) string {
	if rounded := fmt.Sprintf("%.2f", p); math.Abs(p-math.Round(p*100)/100) < priceEpsilon {
		return rounded
	}
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func formatQuantity(q float64) string {
	if q == math.Trunc(q) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.2f", q)
}
