package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/scam-detector/internal/adapters/records"
	"github.com/mikey/scam-detector/internal/config"
	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
)

// RecordsFactory creates analysis record stores based on configuration
type RecordsFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRecordsFactory creates a new records factory
func NewRecordsFactory(cfg *config.Config, logger *zap.Logger) *RecordsFactory {
	return &RecordsFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRecordStore creates the configured record store. Type "none"
// disables persistence.
func (f *RecordsFactory) CreateRecordStore() (core.RecordStore, error) {
	recordsCfg := f.cfg.GetRecords()
	logger := f.logger.Named("records")

	switch recordsCfg.Type {
	case "file":
		return records.NewFileStore(recordsCfg.Directory, logger)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(recordsCfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return records.NewSQLiteStore(recordsCfg.SQLitePath, logger)
	case "postgres":
		return records.NewPostgresStore(context.Background(), recordsCfg.PostgresDSN, logger)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported record store type: %s", recordsCfg.Type)
	}
}
