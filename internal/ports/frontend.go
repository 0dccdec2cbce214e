package ports

import (
	"context"

	"github.com/mikey/scam-detector/internal/core"
)

// Detector runs the scam-detection pipeline over one message
type Detector interface {
	// Analyze always returns a complete record, degraded on failure
	Analyze(ctx context.Context, msg core.Message) *core.AnalysisRecord
}

// Frontend defines the interface for message intake surfaces
type Frontend interface {
	// ProcessMessage analyzes a message and returns its record
	ProcessMessage(ctx context.Context, msg core.Message) (*core.AnalysisRecord, error)

	// Start starts the frontend
	Start() error

	// Stop stops the frontend
	Stop() error
}
