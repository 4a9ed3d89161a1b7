package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/frahmantamala/access-admin/internal/storage"
	"github.com/frahmantamala/access-admin/internal/core/datamodel/kv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store keeps every key as one row of kv_entries.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// Open connects GORM with the dialector matching cfg.Driver.
func Open(cfg internal.StorageConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.StorageDriverSQLite:
		dialector = sqlite.Open(cfg.Source)
	case internal.StorageDriverPostgres:
		dialector = postgres.Open(cfg.Source)
	default:
		return nil, fmt.Errorf("gormstore: unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gormstore: underlying db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

func New(db *gorm.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

// Migrate creates kv_entries when it does not exist yet. The goose migration
// under db/migrations creates the same table for deployments that manage
// schema explicitly.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&kv.Entry{})
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	var entry kv.Entry
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("gormstore: get %q: %w", key, err)
	}
	return []byte(entry.Value), true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("gormstore: %w", storage.ErrEmptyKey)
	}
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry := kv.Entry{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("gormstore: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&kv.Entry{}).Error; err != nil {
		return fmt.Errorf("gormstore: delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.timeout)
	defer cancel()

	var keys []string
	if err := s.db.WithContext(ctx).Model(&kv.Entry{}).Order("storage_key ASC").Pluck("storage_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("gormstore: keys: %w", err)
	}
	return keys, nil
}
