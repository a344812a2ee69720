package screen

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"storefront/client/internal/cart"
	"storefront/client/internal/client"
	"storefront/client/internal/domain"
)

type ProductDetail struct {
	catalog client.CatalogClient
	cart    *cart.Store

	mu         sync.RWMutex
	status     Status
	err        error
	product    *domain.Product
	imageIndex int
	quantity   int
	reload     func(ctx context.Context) (*domain.Product, error)
	reloadKey  string
}

func NewProductDetail(catalog client.CatalogClient, store *cart.Store) *ProductDetail {
	return &ProductDetail{
		catalog:  catalog,
		cart:     store,
		quantity: 1,
	}
}

func (s *ProductDetail) Load(ctx context.Context, id int64) error {
	return s.load(ctx, strconv.FormatInt(id, 10), func(ctx context.Context) (*domain.Product, error) {
		return s.catalog.GetProduct(ctx, id)
	})
}

func (s *ProductDetail) LoadBySlug(ctx context.Context, slug string) error {
	return s.load(ctx, slug, func(ctx context.Context) (*domain.Product, error) {
		return s.catalog.GetProductBySlug(ctx, slug)
	})
}

// Retry repeats the last Load or LoadBySlug
func (s *ProductDetail) Retry(ctx context.Context) error {
	s.mu.RLock()
	reload, key := s.reload, s.reloadKey
	s.mu.RUnlock()

	if reload == nil {
		return ErrNotLoaded
	}
	return s.load(ctx, key, reload)
}

func (s *ProductDetail) load(ctx context.Context, key string, fetch func(ctx context.Context) (*domain.Product, error)) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.err = nil
	s.reload = fetch
	s.reloadKey = key
	s.mu.Unlock()

	product, err := fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.status = StatusFailed
		s.err = err
		s.product = nil
		log.Errorf("❌ Failed to load product %s: %v", key, err)
		return fmt.Errorf("failed to load product %s: %w", key, err)
	}

	s.product = product
	s.imageIndex = 0
	s.quantity = 1
	s.status = StatusLoaded
	return nil
}

func (s *ProductDetail) Product() (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.product == nil {
		return domain.Product{}, false
	}
	return *s.product, true
}

func (s *ProductDetail) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *ProductDetail) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// CurrentImage returns the gallery image on display, or "" when there is none
func (s *ProductDetail) CurrentImage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.product == nil || len(s.product.Images) == 0 {
		return ""
	}
	return s.product.Images[s.imageIndex]
}

func (s *ProductDetail) ImageIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.imageIndex
}

// NextImage advances the gallery and reports whether it moved. It stops at the last image.
func (s *ProductDetail) NextImage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.product == nil || s.imageIndex >= len(s.product.Images)-1 {
		return false
	}
	s.imageIndex++
	return true
}

// PrevImage steps the gallery back and reports whether it moved. It stops at the first image.
func (s *ProductDetail) PrevImage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imageIndex == 0 {
		return false
	}
	s.imageIndex--
	return true
}

func (s *ProductDetail) Quantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quantity
}

func (s *ProductDetail) IncreaseQuantity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quantity++
}

// DecreaseQuantity never goes below 1
func (s *ProductDetail) DecreaseQuantity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quantity > 1 {
		s.quantity--
	}
}

func (s *ProductDetail) SetQuantity(quantity int) error {
	if quantity < 1 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quantity = quantity
	return nil
}

// AddToCartLabel previews what the selected quantity costs, e.g. "Add to Cart - $90.00"
func (s *ProductDetail) AddToCartLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.product == nil {
		return "Add to Cart"
	}
	total := s.product.Price.Mul(decimal.NewFromInt(int64(s.quantity)))
	return "Add to Cart - $" + total.StringFixed(2)
}

// AddToCart puts the selected quantity of the loaded product in the cart
func (s *ProductDetail) AddToCart(ctx context.Context) error {
	s.mu.RLock()
	product := s.product
	quantity := s.quantity
	s.mu.RUnlock()

	if product == nil {
		return ErrNotLoaded
	}

	if err := s.cart.AddToCart(ctx, *product, quantity); err != nil {
		return fmt.Errorf("failed to add product %d to cart: %w", product.ID, err)
	}

	log.Infof("🛒 Added %d x %s to cart", quantity, product.Title)
	return nil
}
