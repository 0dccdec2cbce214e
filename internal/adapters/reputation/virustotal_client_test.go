package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mikey/scam-detector/internal/adapters/cache"
	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func newVTServer(t *testing.T, submits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/urls", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("x-apikey") != "vt-key" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("url") == "" {
			http.Error(w, "missing url", http.StatusBadRequest)
			return
		}
		atomic.AddInt32(submits, 1)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"type": "analysis", "id": "u-123"},
		})
	})
	mux.HandleFunc("/analyses/u-123", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"attributes": map[string]interface{}{
					"status": "completed",
					"stats":  map[string]int{"malicious": 4, "suspicious": 1, "harmless": 60, "undetected": 20},
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckURL(t *testing.T) {
	var submits int32
	srv := newVTServer(t, &submits)
	mem := cache.NewMemoryCache(zap.NewNop(), 0)
	defer mem.Stop()

	c := NewVirusTotalClient("vt-key", srv.URL, time.Millisecond, 5*time.Second, mem, time.Hour, zaptest.NewLogger(t))

	counts, err := c.CheckURL(context.Background(), "https://www.Example.com/login/")
	if err != nil {
		t.Fatalf("CheckURL: %v", err)
	}
	want := core.ReputationCounts{Malicious: 4, Suspicious: 1, Harmless: 60, Undetected: 20}
	if *counts != want {
		t.Fatalf("counts = %+v, want %+v", *counts, want)
	}

	// Same URL spelled differently is served from the cache
	if _, err := c.CheckURL(context.Background(), "http://example.com/login"); err != nil {
		t.Fatalf("CheckURL cached: %v", err)
	}
	if got := atomic.LoadInt32(&submits); got != 1 {
		t.Fatalf("submitted %d times, want 1", got)
	}
}

func TestCheckURLWithoutKey(t *testing.T) {
	c := NewVirusTotalClient("", "http://127.0.0.1:0", time.Millisecond, time.Second, nil, 0, zaptest.NewLogger(t))
	if c.Enabled() {
		t.Fatal("client without key must not be enabled")
	}
	if _, err := c.CheckURL(context.Background(), "https://example.com"); !errors.Is(err, core.ErrReputationUnavailable) {
		t.Fatalf("err = %v, want ErrReputationUnavailable", err)
	}
}

func TestCheckURLHonoursCancellation(t *testing.T) {
	var submits int32
	srv := newVTServer(t, &submits)
	c := NewVirusTotalClient("vt-key", srv.URL, time.Minute, 5*time.Second, nil, 0, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.CheckURL(ctx, "https://example.com"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"https://www.Banco.com.br/": "banco.com.br",
		"http://banco.com.br/pix//": "banco.com.br/pix",
		" HTTPS://bit.ly/AbC ":      "bit.ly/abc",
		"banco.com.br":              "banco.com.br",
	}
	for in, want := range tests {
		if got := NormalizeURL(in); got != want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}
