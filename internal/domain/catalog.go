package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"` // URL
	Slug  string `json:"slug"`
}

// Product is a snapshot of catalog data taken at fetch time
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Images      []string        `json:"images"` // Gallery order as served by the API
}

// Validate reports whether the product can be placed in a cart
func (p Product) Validate() error {
	if p.ID <= 0 {
		return &ValidationError{Field: "product.id", Reason: "must be positive"}
	}
	if p.Price.IsNegative() {
		return &ValidationError{Field: "product.price", Reason: "must not be negative"}
	}
	return nil
}
