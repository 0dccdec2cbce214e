package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
)

// fileTimeLayout is the timestamp suffix of record file names
const fileTimeLayout = "20060102_150405"

// FileStore writes each analysis record as an indented JSON file
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates the directory if needed and returns a store writing into it
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create records directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Save writes the record to <id>_<YYYYMMDD_HHMMSS>.json
func (s *FileStore) Save(ctx context.Context, record *core.AnalysisRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeRecord(record, "  ")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s_%s.json", record.ID, record.CreatedAt.Format(fileTimeLayout))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write record file: %w", err)
	}

	s.logger.Debug("Analysis record saved", zap.String("path", path))
	return nil
}

// encodeRecord marshals the record without escaping HTML characters, so
// links and Portuguese text stay readable
func encodeRecord(record *core.AnalysisRecord, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("failed to encode analysis record: %w", err)
	}
	return buf.Bytes(), nil
}
