package inference

import (
	"encoding/base64"
	"strconv"
	"strings"

	"store_assistant/internal/catalog"
)

type ChatRequest struct {
	Message   string `json:"message"`
	ImageData string `json:"image_data,omitempty"`
	IsURL     bool   `json:"is_url"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
}

// Reply is the canonical backend answer. Alias fields of the wire format never leave this package.
type Reply struct {
	Status    string           `json:"status"`
	Message   string           `json:"message"`
	Product   *catalog.Product `json:"product,omitempty"`
	ReportPDF []byte           `json:"-"`
}

type rawReply struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Response string      `json:"response"`
	Product  *rawProduct `json:"product"`
	Data     *rawProduct `json:"data"`
	PDFData  string      `json:"pdf_data"`
	Report   string      `json:"report"`
}

type rawProduct struct {
	Name          string    `json:"name"`
	Title         string    `json:"title"`
	Brand         string    `json:"brand"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	UnitPrice     flexFloat `json:"unitPrice"`
	UnitPriceAlt  flexFloat `json:"unit_price"`
	Price         flexFloat `json:"price"`
	Quantity      flexFloat `json:"quantity"`
	StockQuantity flexFloat `json:"stock_quantity"`
	Unit          string    `json:"unit"`
	Barcode       string    `json:"barcode"`
	ImageURL      string    `json:"image_url"`
}

// flexFloat accepts numbers sent either as JSON numbers or as strings.
type flexFloat struct {
	Value float64
	Set   bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.Value, f.Set = v, true
	return nil
}

func firstFloat(values ...flexFloat) float64 {
	for _, v := range values {
		if v.Set {
			return v.Value
		}
	}
	return 0
}

func firstString(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func normalize(raw rawReply) Reply {
	reply := Reply{
		Status:  firstString(raw.Status, "success"),
		Message: firstString(raw.Message, raw.Response),
	}

	product := raw.Product
	if product == nil {
		product = raw.Data
	}
	if product != nil {
		reply.Product = &catalog.Product{
			Name:        firstString(product.Name, product.Title),
			Brand:       strings.TrimSpace(product.Brand),
			Category:    strings.TrimSpace(product.Category),
			Description: strings.TrimSpace(product.Description),
			UnitPrice:   firstFloat(product.UnitPrice, product.UnitPriceAlt, product.Price),
			Quantity:    firstFloat(product.Quantity, product.StockQuantity),
			Unit:        strings.TrimSpace(product.Unit),
			Barcode:     strings.TrimSpace(product.Barcode),
			ImageURL:    strings.TrimSpace(product.ImageURL),
		}
		if reply.Product.Name == "" {
			reply.Product = nil
		}
	}

	if encoded := firstString(raw.PDFData, raw.Report); encoded != "" {
		encoded = strings.TrimPrefix(encoded, "data:application/pdf;base64,")
		if pdf, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			reply.ReportPDF = pdf
		}
	}
	return reply
}
