// Package storage provides the durable key/value stores the cart is persisted to.
package storage

import (
	"context"
)

// KeyValueStore is addressed by a single fixed key per value.
// Get reports found=false when nothing has been stored under key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

const (
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var Drivers = []string{DriverSQLite, DriverRedis, DriverPostgres, DriverMemory}
