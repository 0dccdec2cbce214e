package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
)

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), 0)
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	defer c.Stop()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, core.ErrCacheMiss) {
		t.Fatalf("Get missing = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, "education:pix", []byte(`{"tips":[]}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "education:pix", []byte(`{"tips":["a"]}`), 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := c.Get(ctx, "education:pix")
	if err != nil || string(got) != `{"tips":["a"]}` {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := c.Set(ctx, "stale", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("Set stale: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := c.Get(ctx, "stale"); !errors.Is(err, core.ErrCacheMiss) {
		t.Fatalf("expired entry returned: %v", err)
	}
	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := c.Get(ctx, "education:pix"); err != nil {
		t.Fatalf("Cleanup removed a live entry: %v", err)
	}

	if err := c.Delete(ctx, "education:pix"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "education:pix"); !errors.Is(err, core.ErrCacheMiss) {
		t.Fatalf("Get after Delete = %v", err)
	}
}
