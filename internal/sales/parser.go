package sales

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	quantityPattern = `^(\d+(?:\.\d+)?)(?:\s*x)?\s+`
	pricePattern    = `\$?(\d+(?:\.\d+)?)`
)

// Tried in order; the first match wins.
var clausePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)` + quantityPattern + `(.+?)\s*@\s*` + pricePattern + `$`),
	regexp.MustCompile(`(?i)` + quantityPattern + `(.+?)\s+at\s+` + pricePattern + `(?:\s+each)?$`),
	regexp.MustCompile(`(?i)` + quantityPattern + `(.+?)\s+` + pricePattern + `$`),
}

var salesTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+(?:\s*x)?\s+[a-z][^,\n]*?(?:@|\bat\b)\s*\$?\d`),
	regexp.MustCompile(`(?i)\bsold\s+\d+`),
	regexp.MustCompile(`(?i)\b\d+\s*x\s*[a-z]`),
	regexp.MustCompile(`(?i)^\s*\d+(?:\.\d+)?(?:\s*x)?\s+[a-z][^,\n]*?\s+\$?\d+(?:\.\d+)?\s*(?:[,\n]|$)`),
}

// ParseSalesText extracts line items from free-form sales shorthand such as
// "3 maputi @0.50, 1 coke @0.75". Clauses that match no supported shape are left out.
func ParseSalesText(text string) []ParsedSaleItem {
	items, _ := ParseClauses(text)
	return items
}

// ParseClauses is ParseSalesText that also returns the clauses it could not read.
func ParseClauses(text string) ([]ParsedSaleItem, []UnparsedClause) {
	var (
		items    []ParsedSaleItem
		unparsed []UnparsedClause
	)
	for _, clause := range splitClauses(text) {
		item, ok := parseClause(clause)
		if !ok {
			unparsed = append(unparsed, UnparsedClause{Text: clause})
			continue
		}
		items = append(items, item)
	}
	return items, unparsed
}

// IsSalesText reports whether a chat message looks like sales shorthand.
func IsSalesText(text string) bool {
	for _, re := range salesTextPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func splitClauses(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	clauses := make([]string, 0, len(raw))
	for _, clause := range raw {
		if trimmed := strings.TrimSpace(clause); trimmed != "" {
			clauses = append(clauses, trimmed)
		}
	}
	return clauses
}

func parseClause(clause string) (ParsedSaleItem, bool) {
	for _, re := range clausePatterns {
		match := re.FindStringSubmatch(clause)
		if len(match) < 4 {
			continue
		}
		quantity, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(match[3], 64)
		if err != nil {
			continue
		}
		name := strings.TrimSpace(match[2])
		if name == "" {
			continue
		}
		return ParsedSaleItem{
			Quantity:     quantity,
			ProductName:  name,
			UnitPrice:    price,
			OriginalText: clause,
		}, true
	}
	return ParsedSaleItem{}, false
}
