// Package filter narrows and orders a product list for display.
package filter

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront/client/internal/domain"
)

// Apply returns the products that match f, ordered by f.SortBy.
// The input slice is never modified.
func Apply(products []domain.Product, f domain.ProductFilter) []domain.Product {
	result := make([]domain.Product, 0, len(products))

	search := strings.ToLower(f.Search)
	for _, p := range products {
		if f.CategoryID != 0 && p.Category.ID != f.CategoryID {
			continue
		}
		if f.PriceRange != nil && !f.PriceRange.Contains(p.Price) {
			continue
		}
		if search != "" && !matches(p, search) {
			continue
		}
		result = append(result, p)
	}

	Sort(result, f.SortBy)
	return result
}

// Sort orders products in place. Ties keep their relative order.
func Sort(products []domain.Product, order domain.SortOrder) {
	switch order {
	case domain.SortPriceAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case domain.SortNameAsc, domain.SortNameDesc:
		// Collators keep internal buffers and are not safe to share.
		// Default strength: case only breaks ties between otherwise equal titles.
		c := collate.New(language.English)
		desc := order == domain.SortNameDesc
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			if desc {
				return c.CompareString(b.Title, a.Title)
			}
			return c.CompareString(a.Title, b.Title)
		})
	}
}

func matches(p domain.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}
