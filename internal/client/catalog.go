package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/singleflight"
	"resty.dev/v3"

	"storefront/client/internal/config"
	"storefront/client/internal/domain"
	"storefront/client/internal/mirror"
)

// CatalogClient is the read-only boundary to the remote product catalog
type CatalogClient interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

var errNotFound = errors.New("resource not found")

type catalogClient struct {
	rl         ratelimit.Limiter
	config     config.CatalogConfig
	httpClient *resty.Client
	mirrors    mirror.Supplier
	breaker    *gobreaker.CircuitBreaker[[]byte]
	inflight   singleflight.Group

	baseURLMutex sync.RWMutex
	baseURL      string
}

func NewCatalogClient(cfg config.CatalogConfig, mirrors mirror.Supplier) CatalogClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "storefront-client/1.0")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	baseURL := cfg.BaseURL
	if mirrors != nil {
		baseURL = mirrors.Get()
	}

	threshold := uint32(max(cfg.BreakerThreshold, 1))
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "catalog",
		Timeout: time.Duration(cfg.BreakerCooldown) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// A missing product says nothing about catalog health
			return err == nil || errors.Is(err, errNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				log.Warnf("🚫 Circuit breaker %s opened, catalog requests disabled for %ds", name, cfg.BreakerCooldown)
				return
			}
			log.Infof("🔄 Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &catalogClient{
		rl:         rl,
		config:     cfg,
		httpClient: client,
		mirrors:    mirrors,
		breaker:    breaker,
		baseURL:    baseURL,
	}
}

// ListProducts fetches the first page of products. Category and price narrowing
// happen server-side; search and sort are left to the caller.
func (c *catalogClient) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.fetchJSON(ctx, "ListProducts", "/products", productQuery(filter, c.config.PageLimit), &products); err != nil {
		return nil, c.collectionError("ListProducts", "/products", err)
	}

	for i := range products {
		normalizeProduct(&products[i])
	}

	log.Debugf("Fetched %d products", len(products))
	return products, nil
}

func (c *catalogClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := c.fetchJSON(ctx, "GetProduct", "/products/"+strconv.FormatInt(id, 10), nil, &product)
	if errors.Is(err, errNotFound) {
		return nil, &domain.NotFoundError{Resource: "product", Key: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, err
	}

	normalizeProduct(&product)
	return &product, nil
}

func (c *catalogClient) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var product domain.Product
	err := c.fetchJSON(ctx, "GetProductBySlug", "/products/slug/"+url.PathEscape(slug), nil, &product)
	if errors.Is(err, errNotFound) {
		return nil, &domain.NotFoundError{Resource: "product", Key: slug}
	}
	if err != nil {
		return nil, err
	}

	normalizeProduct(&product)
	return &product, nil
}

func (c *catalogClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.fetchJSON(ctx, "ListCategories", "/categories", nil, &categories); err != nil {
		return nil, c.collectionError("ListCategories", "/categories", err)
	}
	return categories, nil
}

// collectionError reports a missing listing endpoint as a NetworkError; only
// single resources can be "not found"
func (c *catalogClient) collectionError(op, path string, err error) error {
	if errors.Is(err, errNotFound) {
		return &domain.NetworkError{Op: op, URL: c.currentBaseURL() + path, StatusCode: http.StatusNotFound}
	}
	return err
}

func productQuery(filter domain.ProductFilter, limit int) url.Values {
	query := url.Values{}
	query.Set("offset", "0")
	query.Set("limit", strconv.Itoa(limit))

	if filter.CategoryID != 0 {
		query.Set("categoryId", strconv.FormatInt(filter.CategoryID, 10))
	}
	if r := filter.PriceRange; r != nil {
		if r.Min.IsPositive() {
			query.Set("price_min", r.Min.String())
		}
		if r.Bounded() {
			query.Set("price_max", r.Max.Decimal.String())
		}
	}

	return query
}

// fetchJSON decodes the body of GET path into out. errNotFound is returned
// unwrapped for 404 answers so callers can name the missing resource.
//
// Concurrent identical requests share one round trip. The shared request is
// detached from every caller's cancellation; each caller only stops waiting
// for it when its own ctx ends.
func (c *catalogClient) fetchJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}

	if err := c.pace(ctx); err != nil {
		return err
	}

	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (any, error) {
		return c.breaker.Execute(func() ([]byte, error) {
			return c.fetch(shared, op, key)
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return fmt.Errorf("request cancelled: %w", ctx.Err())
	case res = <-ch:
	}

	if res.Err != nil {
		if errors.Is(res.Err, gobreaker.ErrOpenState) || errors.Is(res.Err, gobreaker.ErrTooManyRequests) {
			return &domain.NetworkError{Op: op, URL: c.currentBaseURL() + key, Err: res.Err}
		}
		return res.Err
	}

	if err := json.Unmarshal(res.Val.([]byte), out); err != nil {
		return &domain.NetworkError{
			Op:  op,
			URL: c.currentBaseURL() + key,
			Err: fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

// pace waits for a rate limiter slot and gives up if ctx ended meanwhile
func (c *catalogClient) pace(ctx context.Context) error {
	c.rl.Take()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("request cancelled: %w", err)
	}
	return nil
}

func (c *catalogClient) fetch(ctx context.Context, op, pathAndQuery string) ([]byte, error) {
	baseURL := c.currentBaseURL()

	body, err := c.get(ctx, op, baseURL+pathAndQuery)
	if err == nil || !c.shouldFailover(ctx, err) {
		return body, err
	}

	next := c.failover(baseURL)
	if next == "" {
		return nil, err
	}

	log.Infof("🔄 Retrying %s against mirror %s", op, next)
	if err := c.pace(ctx); err != nil {
		return nil, err
	}
	return c.get(ctx, op, next+pathAndQuery)
}

// get performs one request; callers take a rate limiter slot first
func (c *catalogClient) get(ctx context.Context, op, fullURL string) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(fullURL)

	if err != nil {
		// Check if this is a context cancellation from the caller
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, &domain.NetworkError{Op: op, URL: fullURL, Err: err}
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, errNotFound
	}

	if resp.IsError() {
		return nil, &domain.NetworkError{Op: op, URL: fullURL, StatusCode: resp.StatusCode()}
	}

	return []byte(resp.String()), nil
}

// shouldFailover is true for transport failures and server-side errors
func (c *catalogClient) shouldFailover(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	return netErr.StatusCode == 0 || netErr.StatusCode >= http.StatusInternalServerError
}

// failover switches to the next base URL that is not failed and returns it,
// or "" when no alternative exists
func (c *catalogClient) failover(failed string) string {
	if c.mirrors == nil || c.mirrors.Len() < 2 {
		return ""
	}

	for range c.mirrors.Len() {
		next := c.mirrors.Get()
		if next == failed {
			continue
		}

		c.baseURLMutex.Lock()
		c.baseURL = next
		c.baseURLMutex.Unlock()

		log.Warnf("⚠️ Catalog %s failed, switching to %s", failed, next)
		return next
	}

	return ""
}

func (c *catalogClient) currentBaseURL() string {
	c.baseURLMutex.RLock()
	defer c.baseURLMutex.RUnlock()
	return c.baseURL
}
