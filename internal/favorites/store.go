// Package favorites keeps per-visitor favorite players and teams in a string key-value store.
package favorites

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/football-site/internal/models"
	"github.com/stitts-dev/football-site/pkg/config"
	"github.com/stitts-dev/football-site/pkg/database"
)

// Store is a string-keyed, string-valued durable store.
type Store interface {
	// Get returns the value for key; ok is false when the key does not exist.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreDatabase = "database"
)

// NewStoreFromConfig opens the store selected by FAVORITES_STORE.
func NewStoreFromConfig(cfg *config.Config, logger *logrus.Logger) (Store, error) {
	switch strings.ToLower(cfg.FavoritesStore) {
	case "", StoreMemory:
		return NewMemDBStore()
	case StoreRedis:
		return NewRedisStore(cfg.RedisURL)
	case StoreDatabase:
		db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&models.StoredValue{}); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate favorites table: %w", err)
		}
		logger.WithField("store", StoreDatabase).Info("Favorites table ready")
		return NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown favorites store %q", cfg.FavoritesStore)
	}
}
