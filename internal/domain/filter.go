package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type SortOrder string

func (s SortOrder) String() string {
	return string(s)
}

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

var SortOrders = []SortOrder{
	SortPriceAsc,
	SortPriceDesc,
	SortNameAsc,
	SortNameDesc,
}

func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortNone, nil
	}
	for _, order := range SortOrders {
		if string(order) == s {
			return order, nil
		}
	}
	return SortNone, &ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort order %q", s)}
}

// PriceRange is inclusive on both ends. An invalid Max means there is no upper limit.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.NullDecimal
}

func (r PriceRange) Bounded() bool {
	return r.Max.Valid
}

func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.LessThan(r.Min) {
		return false
	}
	return !r.Max.Valid || price.LessThanOrEqual(r.Max.Decimal)
}

type ProductFilter struct {
	Search     string
	CategoryID int64 // 0 means every category
	PriceRange *PriceRange
	SortBy     SortOrder
}

type PriceRangePreset struct {
	Label string
	Range PriceRange
}

func NewPriceRange(min, max int64) PriceRange {
	return PriceRange{
		Min: decimal.NewFromInt(min),
		Max: decimal.NewNullDecimal(decimal.NewFromInt(max)),
	}
}

func NewOpenPriceRange(min int64) PriceRange {
	return PriceRange{Min: decimal.NewFromInt(min)}
}

// PriceRangePresets are the ranges offered by the product list filter panel
var PriceRangePresets = []PriceRangePreset{
	{Label: "Under $50", Range: NewPriceRange(0, 50)},
	{Label: "$50 - $100", Range: NewPriceRange(50, 100)},
	{Label: "$100 - $200", Range: NewPriceRange(100, 200)},
	{Label: "Over $200", Range: NewOpenPriceRange(200)},
}
