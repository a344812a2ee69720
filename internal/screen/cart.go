package screen

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"storefront/client/internal/cart"
	"storefront/client/internal/domain"
)

type Summary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal // Always free
	Total    decimal.Decimal
}

// Receipt is the result of the mocked checkout; no payment happens
type Receipt struct {
	OrderID  uuid.UUID
	Lines    []domain.CartLine
	Total    decimal.Decimal
	PlacedAt time.Time
}

type Cart struct {
	store *cart.Store
	now   func() time.Time
}

func NewCart(store *cart.Store) *Cart {
	return &Cart{store: store, now: time.Now}
}

func (s *Cart) Lines() []domain.CartLine {
	return s.store.Lines()
}

func (s *Cart) IsEmpty() bool {
	return s.store.IsEmpty()
}

// Increase adds one unit to the line for productID, if present
func (s *Cart) Increase(ctx context.Context, productID int64) {
	line, ok := s.store.Line(productID)
	if !ok {
		return
	}
	s.store.UpdateQuantity(ctx, productID, line.Quantity+1)
}

// Decrease removes one unit; the line disappears when it reaches zero
func (s *Cart) Decrease(ctx context.Context, productID int64) {
	line, ok := s.store.Line(productID)
	if !ok {
		return
	}
	s.store.UpdateQuantity(ctx, productID, line.Quantity-1)
}

// SetQuantity sets the line quantity directly; zero or less removes the line
func (s *Cart) SetQuantity(ctx context.Context, productID int64, quantity int) {
	s.store.UpdateQuantity(ctx, productID, quantity)
}

func (s *Cart) Remove(ctx context.Context, productID int64) {
	s.store.RemoveFromCart(ctx, productID)
}

func (s *Cart) Clear(ctx context.Context) {
	s.store.ClearCart(ctx)
}

func (s *Cart) Summary() Summary {
	subtotal := s.store.Total()
	return Summary{
		Subtotal: subtotal,
		Shipping: decimal.Zero,
		Total:    subtotal,
	}
}

// Checkout places a mock order for the current cart and empties it
func (s *Cart) Checkout(ctx context.Context) (*Receipt, error) {
	lines := s.store.Lines()
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}

	receipt := &Receipt{
		OrderID:  uuid.New(),
		Lines:    lines,
		Total:    total,
		PlacedAt: s.now(),
	}

	s.store.ClearCart(ctx)

	log.Infof("✅ Order %s placed: %d lines, total $%s", receipt.OrderID, len(lines), total.StringFixed(2))
	return receipt, nil
}
