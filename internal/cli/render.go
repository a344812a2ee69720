package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"storefront/client/internal/domain"
	"storefront/client/internal/screen"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func renderProducts(w io.Writer, products []domain.Product) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Title, p.Category.Name, money(p.Price))
	}
	tw.Flush()
}

func renderCategories(w io.Writer, categories []domain.Category) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tSLUG")
	for _, c := range categories {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, c.Slug)
	}
	tw.Flush()
}

func renderProduct(w io.Writer, p domain.Product, label string) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Title:\t%s\n", p.Title)
	fmt.Fprintf(tw, "Price:\t%s\n", money(p.Price))
	fmt.Fprintf(tw, "Category:\t%s\n", p.Category.Name)
	fmt.Fprintf(tw, "Images:\t%d\n", len(p.Images))
	tw.Flush()

	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
	fmt.Fprintf(w, "\n[%s]\n", label)
}

func renderCart(w io.Writer, lines []domain.CartLine, summary screen.Summary) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.ID, l.Title, l.Quantity, money(l.Price), money(l.Subtotal()))
	}
	fmt.Fprintln(tw)

	shipping := "Free"
	if !summary.Shipping.IsZero() {
		shipping = money(summary.Shipping)
	}
	fmt.Fprintf(tw, "Subtotal:\t%s\n", money(summary.Subtotal))
	fmt.Fprintf(tw, "Shipping:\t%s\n", shipping)
	fmt.Fprintf(tw, "Total:\t%s\n", money(summary.Total))
	tw.Flush()
}

func renderReceipt(w io.Writer, receipt *screen.Receipt) {
	fmt.Fprintln(w, "Order placed successfully!")

	tw := newTable(w)
	fmt.Fprintf(tw, "Order:\t%s\n", receipt.OrderID)
	fmt.Fprintf(tw, "Placed:\t%s\n", receipt.PlacedAt.Format(time.RFC1123))
	fmt.Fprintf(tw, "Lines:\t%d\n", len(receipt.Lines))
	fmt.Fprintf(tw, "Total:\t%s\n", money(receipt.Total))
	tw.Flush()
}
