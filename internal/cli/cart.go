package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront/client/internal/container"
	"storefront/client/internal/domain"
	"storefront/client/internal/screen"
)

func (r *runner) cartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the shopping cart",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(cmd *cobra.Command, _ []string, app *container.Container) error {
			showCart(cmd, app.CartScreen)
			return nil
		}),
	}

	cmd.AddCommand(
		r.cartAddCommand(),
		r.cartUpdateCommand(),
		r.cartRemoveCommand(),
		r.cartClearCommand(),
		r.cartCheckoutCommand(),
	)
	return cmd
}

func showCart(cmd *cobra.Command, cart *screen.Cart) {
	out := cmd.OutOrStdout()
	if cart.IsEmpty() {
		fmt.Fprintln(out, "Your cart is empty")
		return
	}
	renderCart(out, cart.Lines(), cart.Summary())
}

func (r *runner) cartAddCommand() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(cmd *cobra.Command, args []string, app *container.Container) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}

			detail := app.ProductDetail
			if err := detail.Load(cmd.Context(), id); err != nil {
				return catalogFailure(err)
			}
			if err := detail.SetQuantity(quantity); err != nil {
				return err
			}

			label := detail.AddToCartLabel()
			if err := detail.AddToCart(cmd.Context()); err != nil {
				return err
			}

			product, _ := detail.Product()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d x %s\n", label, quantity, product.Title)
			fmt.Fprintf(cmd.OutOrStdout(), "%d items in cart\n", app.Cart.ItemCount())
			return nil
		}),
	}

	cmd.Flags().IntVarP(&quantity, "qty", "q", 1, "Quantity to add")
	return cmd
}

func (r *runner) cartUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set the quantity of a cart line (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: r.withApp(func(cmd *cobra.Command, args []string, app *container.Container) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return &domain.ValidationError{Field: "quantity", Reason: fmt.Sprintf("%q is not a number", args[1])}
			}

			if _, ok := app.Cart.Line(id); !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Product %d is not in the cart\n", id)
				return nil
			}

			app.CartScreen.SetQuantity(cmd.Context(), id, quantity)
			showCart(cmd, app.CartScreen)
			return nil
		}),
	}
}

func (r *runner) cartRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(cmd *cobra.Command, args []string, app *container.Container) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			app.CartScreen.Remove(cmd.Context(), id)
			showCart(cmd, app.CartScreen)
			return nil
		}),
	}
}

func (r *runner) cartClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove everything from the cart",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(cmd *cobra.Command, _ []string, app *container.Container) error {
			app.CartScreen.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared")
			return nil
		}),
	}
}

func (r *runner) cartCheckoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart contents",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(cmd *cobra.Command, _ []string, app *container.Container) error {
			receipt, err := app.CartScreen.Checkout(cmd.Context())
			if errors.Is(err, screen.ErrCartEmpty) {
				return fmt.Errorf("%w: add some products to your cart before checkout", err)
			}
			if err != nil {
				return err
			}

			renderReceipt(cmd.OutOrStdout(), receipt)
			return nil
		}),
	}
}
