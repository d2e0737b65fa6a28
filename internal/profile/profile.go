package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotFound       = errors.New("profile not found")
	ErrInvalidProfile = errors.New("invalid profile")
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)
)

// Profile holds the store owner's setup.
type Profile struct {
	UserID            string    `json:"user_id"`
	OwnerName         string    `json:"owner_name"`
	StoreName         string    `json:"store_name"`
	StoreAddress      string    `json:"store_address,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Currency          string    `json:"currency"`
	BusinessType      string    `json:"business_type,omitempty"`
	LowStockThreshold float64   `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Normalize trims fields and upper-cases the currency; an empty currency becomes USD.
func (p *Profile) Normalize() {
	p.UserID = strings.TrimSpace(p.UserID)
	p.OwnerName = strings.TrimSpace(p.OwnerName)
	p.StoreName = strings.TrimSpace(p.StoreName)
	p.StoreAddress = strings.TrimSpace(p.StoreAddress)
	p.Phone = strings.TrimSpace(p.Phone)
	p.BusinessType = strings.TrimSpace(p.BusinessType)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = "USD"
	}
}

func (p Profile) Validate() error {
	var problems []string
	if p.UserID == "" {
		problems = append(problems, "user id is required")
	}
	if p.OwnerName == "" {
		problems = append(problems, "owner name is required")
	}
	if p.StoreName == "" {
		problems = append(problems, "store name is required")
	}
	if !currencyPattern.MatchString(p.Currency) {
		problems = append(problems, fmt.Sprintf("currency %q must be a 3-letter code", p.Currency))
	}
	if p.Phone != "" && !phonePattern.MatchString(p.Phone) {
		problems = append(problems, fmt.Sprintf("phone %q is not a valid number", p.Phone))
	}
	if p.LowStockThreshold < 0 {
		problems = append(problems, "low stock threshold cannot be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(problems, "; "))
	}
	return nil
}

// Set applies a single key=value setting as typed in the CLI.
func (p *Profile) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "owner", "owner_name":
		p.OwnerName = value
	case "store", "store_name":
		p.StoreName = value
	case "address", "store_address":
		p.StoreAddress = value
	case "phone":
		p.Phone = value
	case "currency":
		p.Currency = value
	case "type", "business_type":
		p.BusinessType = value
	case "threshold", "low_stock_threshold":
		var threshold float64
		if _, err := fmt.Sscanf(value, "%g", &threshold); err != nil {
			return fmt.Errorf("%w: threshold %q is not a number", ErrInvalidProfile, value)
		}
		p.LowStockThreshold = threshold
	default:
		return fmt.Errorf("%w: unknown setting %q", ErrInvalidProfile, key)
	}
	return nil
}
