package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/client/internal/cart"
	"storefront/client/internal/client"
	"storefront/client/internal/config"
	"storefront/client/internal/container"
	"storefront/client/internal/domain"
	"storefront/client/internal/screen"
	"storefront/client/internal/storage"
)

const (
	mouseJSON  = `{"id":1,"title":"Wireless Mouse","slug":"wireless-mouse","price":25,"description":"Silent clicks","category":{"id":2,"name":"Electronics"},"images":["https://i.imgur.com/m.jpeg"]}`
	hoodieJSON = `{"id":2,"title":"Classic Hoodie","slug":"classic-hoodie","price":45,"description":"Warm","category":{"id":1,"name":"Clothes"},"images":[]}`
)

func catalogHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/products":
		w.Write([]byte("[" + mouseJSON + "," + hoodieJSON + "]"))
	case "/products/1":
		w.Write([]byte(mouseJSON))
	case "/products/2", "/products/slug/classic-hoodie":
		w.Write([]byte(hoodieJSON))
	case "/categories":
		w.Write([]byte(`[{"id":1,"name":"Clothes","slug":"clothes"},{"id":2,"name":"Electronics","slug":"electronics"}]`))
	default:
		http.NotFound(w, r)
	}
}

type harness struct {
	kv *storage.MemoryStore
}

func newHarness(t *testing.T, handler http.HandlerFunc) (*harness, func(args ...string) (string, error)) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	h := &harness{kv: storage.NewMemoryStore()}
	cfg := &config.Config{
		Catalog: config.CatalogConfig{
			BaseURL:          srv.URL,
			Timeout:          5,
			PageLimit:        50,
			BreakerThreshold: 5,
			BreakerCooldown:  30,
		},
		Storage: config.StorageConfig{Driver: storage.DriverMemory, CartKey: cart.DefaultStorageKey},
	}

	build := func(ctx context.Context, _ string) (*container.Container, error) {
		store := cart.NewStore(h.kv, cfg.Storage.CartKey)
		store.Initialize(ctx)
		return container.Assemble(cfg, h.kv, store, client.NewCatalogClient(cfg.Catalog, nil)), nil
	}

	run := func(args ...string) (string, error) {
		root := NewRootCommand(build)
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(args)
		err := root.Execute()
		return out.String(), err
	}

	return h, run
}

func TestProducts_DefaultNameOrder(t *testing.T) {
	_, run := newHarness(t, catalogHandler)

	out, err := run("products")
	require.NoError(t, err)

	assert.Less(t, bytes.Index([]byte(out), []byte("Classic Hoodie")), bytes.Index([]byte(out), []byte("Wireless Mouse")))
	assert.Contains(t, out, "$25.00")
	assert.Contains(t, out, "2 products, 0 items in cart")
}

func TestProducts_SearchSortAndPrice(t *testing.T) {
	_, run := newHarness(t, catalogHandler)

	out, err := run("products", "--search", "warm")
	require.NoError(t, err)
	assert.Contains(t, out, "Classic Hoodie")
	assert.NotContains(t, out, "Wireless Mouse")

	out, err = run("products", "--min", "30", "--max", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "1 products")

	out, err = run("products", "--price-range", "1", "--sort", "price-desc")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Classic Hoodie")), bytes.Index([]byte(out), []byte("Wireless Mouse")))
}

func TestProducts_InvalidFlags(t *testing.T) {
	_, run := newHarness(t, catalogHandler)
	var vErr *domain.ValidationError

	_, err := run("products", "--sort", "cheapest")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "sort", vErr.Field)

	_, err = run("products", "--price-range", "9")
	require.ErrorAs(t, err, &vErr)

	_, err = run("products", "--min", "50", "--max", "10")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "max", vErr.Field)
}

func TestCategories(t *testing.T) {
	_, run := newHarness(t, catalogHandler)

	out, err := run("categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Clothes")
	assert.Contains(t, out, "electronics")
}

func TestProduct(t *testing.T) {
	_, run := newHarness(t, catalogHandler)

	out, err := run("product", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Wireless Mouse")
	assert.Contains(t, out, "Add to Cart - $25.00")

	out, err = run("product", "--slug", "classic-hoodie")
	require.NoError(t, err)
	assert.Contains(t, out, "Classic Hoodie")

	_, err = run("product", "99")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)

	_, err = run("product")
	require.Error(t, err)
}

func TestCartFlow(t *testing.T) {
	h, run := newHarness(t, catalogHandler)

	out, err := run("cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")

	out, err = run("cart", "add", "1", "--qty", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Add to Cart - $50.00")

	_, err = run("cart", "add", "2")
	require.NoError(t, err)

	out, err = run("cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Subtotal:  $95.00")
	assert.Contains(t, out, "Shipping:  Free")

	// Each invocation restores the cart from storage
	payload, found, err := h.kv.Get(context.Background(), cart.DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, found)
	lines, err := cart.Decode(payload)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	out, err = run("cart", "update", "1", "0")
	require.NoError(t, err)
	assert.NotContains(t, out, "Wireless Mouse")
	assert.Contains(t, out, "Total:     $45.00")

	out, err = run("cart", "update", "7", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Product 7 is not in the cart")

	out, err = run("cart", "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "Order placed successfully!")
	assert.Contains(t, out, "$45.00")

	out, err = run("cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")

	_, err = run("cart", "checkout")
	assert.ErrorIs(t, err, screen.ErrCartEmpty)
}

func TestCartAdd_RejectsBadQuantity(t *testing.T) {
	h, run := newHarness(t, catalogHandler)

	_, err := run("cart", "add", "1", "--qty", "0")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)

	_, found, err := h.kv.Get(context.Background(), cart.DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCatalogDownAddsRetryHint(t *testing.T) {
	_, run := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := run("products")
	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, err.Error(), "run the command again to retry")
}
