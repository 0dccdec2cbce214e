package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "search:"

// serpAPIResponse is the subset of the SerpAPI payload used here
type serpAPIResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

// SerpAPIClient is a WebSearchClient backed by SerpAPI Google results.
// Without an API key, or when the backend fails, it answers from a canned
// result set chosen by topic.
type SerpAPIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
	country    string
	cache      core.CacheRepository
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewSerpAPIClient creates a new search client. cache may be nil.
func NewSerpAPIClient(
	apiKey string,
	baseURL string,
	language string,
	country string,
	timeout time.Duration,
	cache core.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *SerpAPIClient {
	return &SerpAPIClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		language:   language,
		country:    country,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Search returns at most numResults hits for query. It never fails: backend
// errors are logged and replaced by canned results.
func (c *SerpAPIClient) Search(ctx context.Context, query string, numResults int) ([]core.SearchResult, error) {
	key := cacheKeyPrefix + query + "_" + strconv.Itoa(numResults)
	if results, ok := c.cached(ctx, key); ok {
		c.logger.Debug("Using cached search results", zap.String("query", query))
		return results, nil
	}

	results, err := c.live(ctx, query, numResults)
	if err != nil {
		if errors.Is(err, core.ErrNoSearchBackend) {
			c.logger.Debug("No search backend configured, using canned results", zap.String("query", query))
		} else {
			c.logger.Warn("Web search failed, using canned results",
				zap.String("query", query),
				zap.Error(err))
		}
		return fallbackResults(query), nil
	}

	c.store(ctx, key, results)
	return results, nil
}

// live queries SerpAPI
func (c *SerpAPIClient) live(ctx context.Context, query string, numResults int) ([]core.SearchResult, error) {
	if c.apiKey == "" {
		return nil, core.ErrNoSearchBackend
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(numResults))
	if c.language != "" {
		params.Set("hl", c.language)
	}
	if c.country != "" {
		params.Set("gl", c.country)
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search backend returned status %d", resp.StatusCode)
	}

	var apiResp serpAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if apiResp.Error != "" {
		return nil, fmt.Errorf("search backend error: %s", apiResp.Error)
	}

	results := make([]core.SearchResult, 0, len(apiResp.OrganicResults))
	for _, r := range apiResp.OrganicResults {
		if len(results) == numResults {
			break
		}
		results = append(results, core.SearchResult{
			Title:   r.Title,
			Link:    r.Link,
			Snippet: r.Snippet,
			Source:  core.SearchSourceLive,
		})
	}

	return results, nil
}

func (c *SerpAPIClient) cached(ctx context.Context, key string) ([]core.SearchResult, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, core.ErrCacheMiss) {
			c.logger.Warn("Failed to read search cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var results []core.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		c.logger.Warn("Discarding corrupt search cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return results, true
}

func (c *SerpAPIClient) store(ctx context.Context, key string, results []core.SearchResult) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Warn("Failed to write search cache", zap.String("key", key), zap.Error(err))
	}
}
