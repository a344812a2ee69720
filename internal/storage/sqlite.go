package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"storefront/client/internal/domain"
)

type kvRecord struct {
	Key       string `gorm:"column:storage_key;primaryKey"`
	Value     string `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (kvRecord) TableName() string {
	return "kv_store"
}

type sqliteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database file at path
func NewSQLiteStore(path string) (KeyValueStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	if err := db.AutoMigrate(&kvRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_store table: %w", err)
	}

	return &sqliteStore{
		db: db,
	}, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var rec kvRecord
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, &domain.PersistenceError{Op: "get", Key: key, Err: err}
	}

	return rec.Value, true, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	rec := kvRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return &domain.PersistenceError{Op: "set", Key: key, Err: err}
	}

	return nil
}

func (s *sqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
