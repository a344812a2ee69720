package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/client/internal/domain"
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv_store (
	storage_key TEXT PRIMARY KEY,
	value       TEXT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type postgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates the backing table if it does not exist yet
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool) (KeyValueStore, error) {
	if _, err := db.Exec(ctx, createKVTable); err != nil {
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &postgresStore{
		db: db,
	}, nil
}

func (s *postgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE storage_key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, &domain.PersistenceError{Op: "get", Key: key, Err: err}
	}

	return value, true, nil
}

func (s *postgresStore) Set(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO kv_store (storage_key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (storage_key)
	DO UPDATE SET value = $2, updated_at = now()`
	_, err := s.db.Exec(ctx, query, key, value)
	if err != nil {
		return &domain.PersistenceError{Op: "set", Key: key, Err: err}
	}

	return nil
}

func (s *postgresStore) Close() error {
	s.db.Close()
	return nil
}
