package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/client/internal/domain"
)

func product(id int64, title string, price float64, categoryID int64) domain.Product {
	return domain.Product{
		ID:          id,
		Title:       title,
		Price:       decimal.NewFromFloat(price),
		Description: "A fine " + title,
		Category:    domain.Category{ID: categoryID},
	}
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func catalog() []domain.Product {
	return []domain.Product{
		product(1, "Classic Hoodie", 45, 1),
		product(2, "running shoes", 120, 2),
		product(3, "Wireless Mouse", 25, 3),
		product(4, "Leather Jacket", 250, 1),
		product(5, "Ergonomic Chair", 120, 3),
	}
}

func TestApply_NoFilterKeepsInputOrder(t *testing.T) {
	got := Apply(catalog(), domain.ProductFilter{})
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(got))
}

func TestApply_Category(t *testing.T) {
	got := Apply(catalog(), domain.ProductFilter{CategoryID: 1})
	assert.Equal(t, []int64{1, 4}, ids(got))
}

func TestApply_PriceRangeInclusive(t *testing.T) {
	r := domain.NewPriceRange(45, 120)
	got := Apply(catalog(), domain.ProductFilter{PriceRange: &r})
	assert.Equal(t, []int64{1, 2, 5}, ids(got))
}

func TestApply_PriceRangeUnbounded(t *testing.T) {
	r := domain.NewOpenPriceRange(200)
	got := Apply(catalog(), domain.ProductFilter{PriceRange: &r})
	assert.Equal(t, []int64{4}, ids(got))
}

func TestApply_SearchMatchesTitleOrDescriptionIgnoringCase(t *testing.T) {
	products := catalog()
	products[2].Description = "Bluetooth pointer with SILENT clicks"

	got := Apply(products, domain.ProductFilter{Search: "silent"})
	assert.Equal(t, []int64{3}, ids(got))

	got = Apply(products, domain.ProductFilter{Search: "JACKET"})
	assert.Equal(t, []int64{4}, ids(got))
}

func TestApply_EmptySearchMatchesEverything(t *testing.T) {
	got := Apply(catalog(), domain.ProductFilter{Search: ""})
	assert.Len(t, got, 5)
}

func TestApply_WhitespaceSearchIsLiteral(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Title: "Mouse"},
		{ID: 2, Title: "Desk Lamp"},
	}

	got := Apply(products, domain.ProductFilter{Search: " "})
	assert.Equal(t, []int64{2}, ids(got))
}

func TestApply_SortByPriceIsStable(t *testing.T) {
	got := Apply(catalog(), domain.ProductFilter{SortBy: domain.SortPriceAsc})
	assert.Equal(t, []int64{3, 1, 2, 5, 4}, ids(got))

	got = Apply(catalog(), domain.ProductFilter{SortBy: domain.SortPriceDesc})
	assert.Equal(t, []int64{4, 2, 5, 1, 3}, ids(got))
}

func TestApply_SortByNameIgnoresCase(t *testing.T) {
	got := Apply(catalog(), domain.ProductFilter{SortBy: domain.SortNameAsc})
	assert.Equal(t, []int64{1, 5, 4, 2, 3}, ids(got))

	got = Apply(catalog(), domain.ProductFilter{SortBy: domain.SortNameDesc})
	assert.Equal(t, []int64{3, 2, 4, 5, 1}, ids(got))
}

func TestApply_SortByNameOrdersCaseVariants(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Title: "Apple"},
		{ID: 2, Title: "banana"},
		{ID: 3, Title: "apple"},
	}

	got := Apply(products, domain.ProductFilter{SortBy: domain.SortNameAsc})
	assert.Equal(t, []int64{3, 1, 2}, ids(got))

	got = Apply(products, domain.ProductFilter{SortBy: domain.SortNameDesc})
	assert.Equal(t, []int64{2, 1, 3}, ids(got))
}

func TestApply_Idempotent(t *testing.T) {
	r := domain.NewPriceRange(0, 200)
	f := domain.ProductFilter{Search: "e", PriceRange: &r, SortBy: domain.SortNameAsc}

	once := Apply(catalog(), f)
	twice := Apply(once, f)
	require.NotEmpty(t, once)
	assert.Equal(t, ids(once), ids(twice))
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	in := catalog()
	_ = Apply(in, domain.ProductFilter{SortBy: domain.SortPriceDesc})
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(in))
}
