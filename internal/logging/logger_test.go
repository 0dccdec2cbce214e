package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikey/scam-detector/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for name, want := range tests {
		if got := parseLevel(name); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestInitLoggerWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detector.log")

	v := config.NewEmptyViper()
	v.Set("logging.file", path)
	v.Set("logging.level", "debug")

	logger, err := InitLogger(config.NewFromViper(v))
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	logger.Debug("pipeline started")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "pipeline started") {
		t.Fatalf("log file does not contain the entry: %q", data)
	}
}
