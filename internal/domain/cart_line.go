package domain

import "github.com/shopspring/decimal"

// CartLine is one product's presence in the cart. Quantity is always >= 1.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
