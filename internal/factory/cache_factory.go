package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/scam-detector/internal/adapters/cache"
	"github.com/mikey/scam-detector/internal/config"
	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates cache repositories based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheRepository creates the process-wide cache shared by the
// search, reputation and education components
func (f *CacheFactory) CreateCacheRepository() (core.CacheRepository, error) {
	cacheCfg := f.cfg.GetCache()
	logger := f.logger.Named("cache")

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(logger, cacheCfg.CleanupFrequency), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheCfg.SQLitePath, logger, cacheCfg.CleanupFrequency)
	case "mysql":
		return cache.NewMySQLCache(cacheCfg.MySQLDSN, logger, cacheCfg.CleanupFrequency)
	case "redis":
		return cache.NewRedisCache(
			cacheCfg.Redis.Address,
			cacheCfg.Redis.Password,
			cacheCfg.Redis.DB,
			cacheCfg.Redis.KeyPrefix,
			logger,
		)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}
