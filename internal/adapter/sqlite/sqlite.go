// Package sqlite implements the durable local cache on an embedded SQLite
// database, so a cached session survives process restarts without any
// external service.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nutrigo/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ domain.Cache = (*Cache)(nil)

type cacheEntry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     string
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (cacheEntry) TableName() string { return "cache_entries" }

// Cache is a domain.Cache backed by a single key-value table.
type Cache struct {
	db *gorm.DB
}

// Open creates the database file (and its directory) if needed and migrates
// the schema.
func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000", dbPath)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&cacheEntry{}); err != nil {
		return nil, fmt.Errorf("migrate cache table: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns the value stored under key.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var entry cacheEntry
	err := c.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set stores value under key. The write is durable once Set returns.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	entry := cacheEntry{Key: key, Value: value}
	err := c.db.WithContext(ctx).Save(&entry).Error
	if err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// Remove deletes the value stored under key.
func (c *Cache) Remove(ctx context.Context, key string) error {
	err := c.db.WithContext(ctx).Delete(&cacheEntry{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("cache remove %q: %w", key, err)
	}
	return nil
}
