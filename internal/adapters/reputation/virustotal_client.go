package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "reputation:"

type vtSubmitResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type vtAnalysisResponse struct {
	Data struct {
		Attributes struct {
			Status string                `json:"status"`
			Stats  core.ReputationCounts `json:"stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// VirusTotalClient is a ReputationClient backed by the VirusTotal v3 API
type VirusTotalClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	pollDelay  time.Duration
	cache      core.CacheRepository
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewVirusTotalClient creates a new reputation client. cache may be nil.
func NewVirusTotalClient(
	apiKey string,
	baseURL string,
	pollDelay time.Duration,
	timeout time.Duration,
	cache core.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *VirusTotalClient {
	return &VirusTotalClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		pollDelay:  pollDelay,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Enabled reports whether an API key is configured
func (c *VirusTotalClient) Enabled() bool {
	return c.apiKey != ""
}

// CheckURL submits the URL for scanning, waits for the analysis and returns
// the engine verdict counts
func (c *VirusTotalClient) CheckURL(ctx context.Context, rawURL string) (*core.ReputationCounts, error) {
	if !c.Enabled() {
		return nil, core.ErrReputationUnavailable
	}

	key := cacheKeyPrefix + NormalizeURL(rawURL)
	if counts, ok := c.cached(ctx, key); ok {
		return counts, nil
	}

	analysisID, err := c.submit(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// Give the scanners time to finish
	select {
	case <-time.After(c.pollDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	counts, err := c.analysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("URL reputation received",
		zap.String("url", rawURL),
		zap.Int("malicious", counts.Malicious),
		zap.Int("suspicious", counts.Suspicious))

	c.store(ctx, key, counts)
	return counts, nil
}

// submit posts the URL and returns the analysis identifier
func (c *VirusTotalClient) submit(ctx context.Context, rawURL string) (string, error) {
	form := url.Values{}
	form.Set("url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/urls", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp vtSubmitResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("failed to submit URL: %w", err)
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("VirusTotal returned no analysis id")
	}
	return resp.Data.ID, nil
}

// analysis fetches the verdict counts of a submitted URL
func (c *VirusTotalClient) analysis(ctx context.Context, id string) (*core.ReputationCounts, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/analyses/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}

	var resp vtAnalysisResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch analysis: %w", err)
	}

	counts := resp.Data.Attributes.Stats
	return &counts, nil
}

func (c *VirusTotalClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("VirusTotal returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *VirusTotalClient) cached(ctx context.Context, key string) (*core.ReputationCounts, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, core.ErrCacheMiss) {
			c.logger.Warn("Failed to read reputation cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var counts core.ReputationCounts
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, false
	}
	return &counts, true
}

func (c *VirusTotalClient) store(ctx context.Context, key string, counts *core.ReputationCounts) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Warn("Failed to write reputation cache", zap.String("key", key), zap.Error(err))
	}
}

// NormalizeURL lowercases the URL and strips the scheme, a leading "www."
// and trailing slashes, so equivalent spellings share a cache entry
func NormalizeURL(rawURL string) string {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimRight(u, "/")
}
