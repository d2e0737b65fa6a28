package catalog

import "time"

const defaultUnit = "each"

// Product is a catalog entry owned by one store user.
type Product struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand,omitempty"`
	Category     string    `json:"category,omitempty"`
	Description  string    `json:"description,omitempty"`
	UnitPrice    float64   `json:"unit_price"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	Barcode      string    `json:"barcode,omitempty"`
	ReorderLevel float64   `json:"reorder_level"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LowOnStock reports whether the product is at or below its reorder level.
func (p Product) LowOnStock() bool {
	return p.Quantity <= p.ReorderLevel
}

// Update carries a partial product update; nil fields are left unchanged.
type Update struct {
	Name         *string  `json:"name,omitempty"`
	Brand        *string  `json:"brand,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Description  *string  `json:"description,omitempty"`
	UnitPrice    *float64 `json:"unit_price,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	Barcode      *string  `json:"barcode,omitempty"`
	ReorderLevel *float64 `json:"reorder_level,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty"`
}

func (u Update) apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.UnitPrice != nil {
		p.UnitPrice = *u.UnitPrice
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.Unit != nil {
		p.Unit = *u.Unit
	}
	if u.Barcode != nil {
		p.Barcode = *u.Barcode
	}
	if u.ReorderLevel != nil {
		p.ReorderLevel = *u.ReorderLevel
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
}
