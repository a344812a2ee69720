package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"storefront/client/internal/container"
	"storefront/client/internal/domain"
)

func (r *runner) productsCommand() *cobra.Command {
	var (
		search   string
		sortBy   string
		category int64
		preset   int
		minPrice int64
		maxPrice int64
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(cmd *cobra.Command, _ []string, app *container.Container) error {
			order, err := domain.ParseSortOrder(sortBy)
			if err != nil {
				return err
			}

			priceRange, err := priceRangeFromFlags(cmd, preset, minPrice, maxPrice)
			if err != nil {
				return err
			}

			list := app.ProductList
			list.SetFilter(domain.ProductFilter{
				Search:     search,
				CategoryID: category,
				PriceRange: priceRange,
				SortBy:     order,
			})

			if err := list.Load(cmd.Context()); err != nil {
				return catalogFailure(err)
			}

			products := list.Products()
			out := cmd.OutOrStdout()
			if len(products) == 0 {
				fmt.Fprintln(out, "No products found")
			} else {
				renderProducts(out, products)
			}
			fmt.Fprintf(out, "\n%d products, %d items in cart\n", len(products), list.CartBadge())
			return nil
		}),
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Search product titles and descriptions")
	cmd.Flags().StringVar(&sortBy, "sort", string(domain.SortNameAsc), "Sort order: price-asc, price-desc, name-asc, name-desc")
	cmd.Flags().Int64Var(&category, "category", 0, "Category ID (0 for all)")
	cmd.Flags().IntVar(&preset, "price-range", 0, presetUsage())
	cmd.Flags().Int64Var(&minPrice, "min", 0, "Minimum price")
	cmd.Flags().Int64Var(&maxPrice, "max", 0, "Maximum price")
	cmd.MarkFlagsMutuallyExclusive("price-range", "min")
	cmd.MarkFlagsMutuallyExclusive("price-range", "max")

	return cmd
}

func presetUsage() string {
	usage := "Price range preset:"
	for i, p := range domain.PriceRangePresets {
		usage += fmt.Sprintf(" %d=%s", i+1, p.Label)
	}
	return usage
}

func priceRangeFromFlags(cmd *cobra.Command, preset int, minPrice, maxPrice int64) (*domain.PriceRange, error) {
	if cmd.Flags().Changed("price-range") {
		if preset < 1 || preset > len(domain.PriceRangePresets) {
			return nil, &domain.ValidationError{
				Field:  "price-range",
				Reason: fmt.Sprintf("must be between 1 and %d", len(domain.PriceRangePresets)),
			}
		}
		r := domain.PriceRangePresets[preset-1].Range
		return &r, nil
	}

	hasMin, hasMax := cmd.Flags().Changed("min"), cmd.Flags().Changed("max")
	if !hasMin && !hasMax {
		return nil, nil
	}

	if minPrice < 0 {
		return nil, &domain.ValidationError{Field: "min", Reason: "must not be negative"}
	}

	r := domain.NewOpenPriceRange(minPrice)
	if hasMax {
		if maxPrice < minPrice {
			return nil, &domain.ValidationError{Field: "max", Reason: "must not be below min"}
		}
		r.Max = decimal.NewNullDecimal(decimal.NewFromInt(maxPrice))
	}
	return &r, nil
}

func (r *runner) categoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(cmd *cobra.Command, _ []string, app *container.Container) error {
			categories, err := app.Catalog.ListCategories(cmd.Context())
			if err != nil {
				return catalogFailure(err)
			}
			renderCategories(cmd.OutOrStdout(), categories)
			return nil
		}),
	}
}

func (r *runner) productCommand() *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "product [id]",
		Short: "Show product details",
		Args:  cobra.MaximumNArgs(1),
		RunE: r.withApp(func(cmd *cobra.Command, args []string, app *container.Container) error {
			detail := app.ProductDetail

			var err error
			switch {
			case slug != "":
				err = detail.LoadBySlug(cmd.Context(), slug)
			case len(args) == 1:
				id, parseErr := parseProductID(args[0])
				if parseErr != nil {
					return parseErr
				}
				err = detail.Load(cmd.Context(), id)
			default:
				return fmt.Errorf("a product id or --slug is required")
			}
			if err != nil {
				return catalogFailure(err)
			}

			product, _ := detail.Product()
			renderProduct(cmd.OutOrStdout(), product, detail.AddToCartLabel())
			return nil
		}),
	}

	cmd.Flags().StringVar(&slug, "slug", "", "Look the product up by slug")
	return cmd
}

func parseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: "product id", Reason: fmt.Sprintf("%q is not a positive number", s)}
	}
	return id, nil
}
