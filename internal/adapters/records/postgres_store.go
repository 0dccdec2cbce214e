package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
)

// PostgresStore persists analysis records in PostgreSQL as JSONB
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and creates the records table
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Create pool with timeout
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = pool.Exec(connectCtx, `
		CREATE TABLE IF NOT EXISTS analysis_records (
			analysis_id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			risk_score INTEGER NOT NULL,
			is_fraud BOOLEAN NOT NULL,
			degraded BOOLEAN NOT NULL,
			payload JSONB NOT NULL
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Info("Connected to PostgreSQL record store")

	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Save inserts the record; records are never updated
func (s *PostgresStore) Save(ctx context.Context, record *core.AnalysisRecord) error {
	payload, err := encodeRecord(record, "")
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO analysis_records (analysis_id, created_at, risk_score, is_fraud, degraded, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, record.ID, record.CreatedAt, record.RiskScore, record.IsFraud, record.Degraded, payload)
	if err != nil {
		return fmt.Errorf("failed to insert analysis record: %w", err)
	}
	return nil
}

// Get loads a stored record by id
func (s *PostgresStore) Get(ctx context.Context, id string) (*core.AnalysisRecord, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM analysis_records WHERE analysis_id = $1
	`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to query analysis record: %w", err)
	}

	var record core.AnalysisRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to decode analysis record: %w", err)
	}
	return &record, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
