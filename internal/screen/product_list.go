package screen

import (
	"context"
	"fmt"
	"slices"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront/client/internal/cart"
	"storefront/client/internal/client"
	"storefront/client/internal/domain"
	"storefront/client/internal/filter"
)

type ProductList struct {
	catalog client.CatalogClient
	cart    *cart.Store

	mu         sync.RWMutex
	filter     domain.ProductFilter
	status     Status
	err        error
	fetched    []domain.Product // As returned by the catalog for the current server-side filter
	visible    []domain.Product
	categories []domain.Category
	generation uint64 // Bumped by every Load; only the newest load may publish results
}

func NewProductList(catalog client.CatalogClient, store *cart.Store) *ProductList {
	return &ProductList{
		catalog: catalog,
		cart:    store,
		filter:  domain.ProductFilter{SortBy: domain.SortNameAsc},
	}
}

// Load fetches products for the current filter and, on first use, the
// category list. A failed category fetch leaves the category list empty but
// does not fail the screen.
func (s *ProductList) Load(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.status = StatusLoading
	s.err = nil
	query := s.filter
	needCategories := len(s.categories) == 0
	s.mu.Unlock()

	var (
		products   []domain.Product
		categories []domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.catalog.ListProducts(gctx, query)
		return err
	})
	if needCategories {
		g.Go(func() error {
			var err error
			categories, err = s.catalog.ListCategories(gctx)
			if err != nil {
				log.Warnf("⚠️ Failed to load categories: %v", err)
			}
			return nil
		})
	}

	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if categories != nil {
		s.categories = categories
	}

	if generation != s.generation {
		log.Debugf("Discarding superseded product list load for category %d", query.CategoryID)
		return nil
	}

	if err != nil {
		s.status = StatusFailed
		s.err = err
		s.fetched = nil
		s.visible = nil
		log.Errorf("❌ Failed to load products: %v", err)
		return fmt.Errorf("failed to load products: %w", err)
	}

	s.fetched = products
	s.visible = filter.Apply(products, s.filter)
	s.status = StatusLoaded
	log.Debugf("Product list loaded: %d fetched, %d visible", len(products), len(s.visible))
	return nil
}

func (s *ProductList) Retry(ctx context.Context) error {
	return s.Load(ctx)
}

// SetSearch narrows the already fetched products without a round trip
func (s *ProductList) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Search = term
	s.reapply()
}

func (s *ProductList) SetSort(order domain.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.SortBy = order
	s.reapply()
}

// SetFilter replaces the whole filter without fetching; call Load to refresh
func (s *ProductList) SetFilter(f domain.ProductFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.reapply()
}

// SetCategory selects a category (0 for all) and refetches
func (s *ProductList) SetCategory(ctx context.Context, categoryID int64) error {
	s.mu.Lock()
	s.filter.CategoryID = categoryID
	s.mu.Unlock()
	return s.Load(ctx)
}

// SetPriceRange selects a price range (nil for any price) and refetches
func (s *ProductList) SetPriceRange(ctx context.Context, r *domain.PriceRange) error {
	s.mu.Lock()
	s.filter.PriceRange = r
	s.mu.Unlock()
	return s.Load(ctx)
}

func (s *ProductList) reapply() {
	if s.status == StatusLoaded {
		s.visible = filter.Apply(s.fetched, s.filter)
	}
}

func (s *ProductList) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.visible)
}

func (s *ProductList) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

func (s *ProductList) Filter() domain.ProductFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *ProductList) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *ProductList) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// CartBadge is the number shown on the header cart icon
func (s *ProductList) CartBadge() int {
	return s.cart.ItemCount()
}
