package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"storefront/client/internal/cart"
	"storefront/client/internal/client"
	"storefront/client/internal/config"
	"storefront/client/internal/mirror"
	"storefront/client/internal/screen"
	"storefront/client/internal/storage"
)

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Storage storage.KeyValueStore
	Cart    *cart.Store
	Catalog client.CatalogClient

	ProductList   *screen.ProductList
	ProductDetail *screen.ProductDetail
	CartScreen    *screen.Cart
}

// New creates a new container with all dependencies initialized.
// The cart is restored before New returns.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	level, err := log.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	log.SetLevel(level)

	kv, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var mirrors mirror.Supplier
	if len(cfg.Catalog.Mirrors) > 0 {
		mirrors = mirror.NewSupplier(ctx, cfg.Catalog.BaseURL, cfg.Catalog.Mirrors)
	}

	catalog := client.NewCatalogClient(cfg.Catalog, mirrors)

	store := cart.NewStore(kv, cfg.Storage.CartKey)
	store.Initialize(ctx)

	return Assemble(cfg, kv, store, catalog), nil
}

// Assemble wires the screens around already constructed collaborators
func Assemble(cfg *config.Config, kv storage.KeyValueStore, store *cart.Store, catalog client.CatalogClient) *Container {
	return &Container{
		Config:        cfg,
		Storage:       kv,
		Cart:          store,
		Catalog:       catalog,
		ProductList:   screen.NewProductList(catalog, store),
		ProductDetail: screen.NewProductDetail(catalog, store),
		CartScreen:    screen.NewCart(store),
	}
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.KeyValueStore, error) {
	switch cfg.Storage.Driver {
	case storage.DriverSQLite:
		kv, err := storage.NewSQLiteStore(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		log.Infof("✅ Using SQLite cart storage at %s", cfg.SQLite.Path)
		return kv, nil

	case storage.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		// Test connection
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		log.Info("✅ Connected to Redis successfully")
		return storage.NewRedisStore(rdb, cfg.Redis.KeyPrefix), nil

	case storage.DriverPostgres:
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}

		kv, err := storage.NewPostgresStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}

		log.Info("✅ Connected to Postgres successfully")
		return kv, nil

	case storage.DriverMemory:
		log.Warn("⚠️ Using in-memory cart storage, the cart will not survive a restart")
		return storage.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Close writes out any cart snapshot that failed to persist and releases storage
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Cart.Flush(ctx); err != nil {
		log.Errorf("❌ Failed to flush cart on shutdown: %v", err)
	}

	if err := c.Storage.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}

	log.Debug("Container shut down successfully")
	return nil
}
