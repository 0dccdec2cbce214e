package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
)

// ErrRecordNotFound is returned by Get for an unknown analysis id
var ErrRecordNotFound = errors.New("analysis record not found")

// SQLiteStore persists analysis records in a SQLite table
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens the database and creates the records table
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_records (
			analysis_id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			risk_score INTEGER NOT NULL,
			is_fraud BOOLEAN NOT NULL,
			degraded BOOLEAN NOT NULL,
			payload TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Save inserts the record; records are never updated
func (s *SQLiteStore) Save(ctx context.Context, record *core.AnalysisRecord) error {
	payload, err := encodeRecord(record, "")
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_records (analysis_id, created_at, risk_score, is_fraud, degraded, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.ID, record.CreatedAt.UTC(), record.RiskScore, record.IsFraud, record.Degraded, string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert analysis record: %w", err)
	}
	return nil
}

// Get loads a stored record by id
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.AnalysisRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM analysis_records WHERE analysis_id = ?
	`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to query analysis record: %w", err)
	}

	var record core.AnalysisRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to decode analysis record: %w", err)
	}
	return &record, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
