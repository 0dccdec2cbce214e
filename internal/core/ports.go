package core

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is returned by a CacheRepository when no live entry exists
	ErrCacheMiss = errors.New("cache entry not found")
	// ErrReputationUnavailable is returned when no reputation credential is configured
	ErrReputationUnavailable = errors.New("reputation service not configured")
	// ErrNoSearchBackend is returned when no live search backend is configured
	ErrNoSearchBackend = errors.New("search backend not configured")
)

// TextCompletionClient turns a prompt into free text
type TextCompletionClient interface {
	// Complete sends the prompt to the model and returns its text response
	Complete(ctx context.Context, prompt string) (string, error)
}

// WebSearchClient returns ranked search hits for a query
type WebSearchClient interface {
	// Search runs the query, returning at most numResults hits
	Search(ctx context.Context, query string, numResults int) ([]SearchResult, error)
}

// ReputationClient looks up how many engines flag a URL
type ReputationClient interface {
	// CheckURL submits the URL and returns verdict counts
	CheckURL(ctx context.Context, rawURL string) (*ReputationCounts, error)
	// Enabled reports whether a credential is configured
	Enabled() bool
}

// Blacklist maps a domain to the category it was listed under
type Blacklist interface {
	// Lookup returns the category of a listed domain
	Lookup(domain string) (category string, listed bool)
}

// CacheRepository is a process-wide key/value cache shared by the components
type CacheRepository interface {
	// Get retrieves a value, returning ErrCacheMiss when absent or expired
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value; a zero ttl means the entry never expires
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// RecordStore persists finished analysis records, append-only
type RecordStore interface {
	// Save writes the record keyed by its identifier
	Save(ctx context.Context, record *AnalysisRecord) error
}

// DomainAllowlist names domains trusted enough to skip reputation lookups
type DomainAllowlist interface {
	// IsTrusted reports whether the domain or one of its parents is trusted
	IsTrusted(domain string) bool
}
