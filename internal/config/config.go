package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"storefront/client/internal/cart"
	"storefront/client/internal/storage"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Storage  StorageConfig  `mapstructure:"storage"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// CatalogConfig holds catalog API configuration
type CatalogConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Timeout              int      `mapstructure:"timeout"` // Seconds
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"` // 0 disables pacing
	PageLimit            int      `mapstructure:"page_limit"`
	Mirrors              []string `mapstructure:"mirrors"`

	// Circuit breaker
	BreakerThreshold int `mapstructure:"breaker_threshold"` // Consecutive failures before opening
	BreakerCooldown  int `mapstructure:"breaker_cooldown"`  // Seconds before a half-open probe
}

// StorageConfig selects where the cart is persisted
type StorageConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite, redis, postgres, memory
	CartKey string `mapstructure:"cart_key"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DatabaseConfig holds Postgres configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads config.yaml (or the file at path) with environment variable overrides.
// A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("No config.yaml found, using defaults")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url must be set")
	}
	if c.Catalog.PageLimit <= 0 {
		return fmt.Errorf("catalog.page_limit must be positive, got %d", c.Catalog.PageLimit)
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be positive, got %d", c.Catalog.Timeout)
	}
	if !slices.Contains(storage.Drivers, c.Storage.Driver) {
		return fmt.Errorf("unknown storage.driver %q, expected one of %s",
			c.Storage.Driver, strings.Join(storage.Drivers, ", "))
	}
	if _, err := log.ParseLevel(c.App.LogLevel); err != nil {
		return fmt.Errorf("invalid app.log_level: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("catalog.base_url", "https://api.escuelajs.co/api/v1")
	v.SetDefault("catalog.timeout", 30)
	v.SetDefault("catalog.max_retries", 2)
	v.SetDefault("catalog.max_requests_per_second", 10)
	v.SetDefault("catalog.page_limit", 50)
	v.SetDefault("catalog.mirrors", []string{})
	v.SetDefault("catalog.breaker_threshold", 5)
	v.SetDefault("catalog.breaker_cooldown", 30)

	v.SetDefault("storage.driver", storage.DriverSQLite)
	v.SetDefault("storage.cart_key", cart.DefaultStorageKey)

	v.SetDefault("sqlite.path", "./storefront.db")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "storefront:")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "storefront")
	v.SetDefault("database.user", "storefront_user")
	v.SetDefault("database.password", "storefront_pass")
}
