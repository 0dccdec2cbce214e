package factory

import (
	"github.com/mikey/scam-detector/internal/adapters/blacklist"
	"github.com/mikey/scam-detector/internal/adapters/reputation"
	"github.com/mikey/scam-detector/internal/adapters/search"
	"github.com/mikey/scam-detector/internal/allowlist"
	"github.com/mikey/scam-detector/internal/config"
	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
)

// CapabilityFactory creates the search, reputation and domain list adapters
type CapabilityFactory struct {
	cfg    *config.Config
	cache  core.CacheRepository
	logger *zap.Logger
}

// NewCapabilityFactory creates a new capability factory. Adapters it builds
// share cache.
func NewCapabilityFactory(cfg *config.Config, cache core.CacheRepository, logger *zap.Logger) *CapabilityFactory {
	return &CapabilityFactory{
		cfg:    cfg,
		cache:  cache,
		logger: logger,
	}
}

// CreateSearchClient creates the web search client
func (f *CapabilityFactory) CreateSearchClient() core.WebSearchClient {
	searchCfg := f.cfg.GetSearch()
	if searchCfg.APIKey == "" {
		f.logger.Warn("No search API key configured, web search will use canned results")
	}

	return search.NewSerpAPIClient(
		searchCfg.APIKey,
		searchCfg.BaseURL,
		searchCfg.Language,
		searchCfg.Country,
		searchCfg.Timeout,
		f.cache,
		searchCfg.CacheTTL,
		f.logger.Named("search"),
	)
}

// CreateReputationClient creates the URL reputation client
func (f *CapabilityFactory) CreateReputationClient() core.ReputationClient {
	repCfg := f.cfg.GetReputation()
	if repCfg.APIKey == "" {
		f.logger.Warn("No reputation API key configured, reputation lookups are disabled")
	}

	return reputation.NewVirusTotalClient(
		repCfg.APIKey,
		repCfg.BaseURL,
		repCfg.PollDelay,
		repCfg.Timeout,
		f.cache,
		repCfg.CacheTTL,
		f.logger.Named("reputation"),
	)
}

// CreateBlacklist loads the domain blacklist file
func (f *CapabilityFactory) CreateBlacklist() (core.Blacklist, error) {
	return blacklist.Load(f.cfg.GetString("blacklist.path"), f.logger.Named("blacklist"))
}

// CreateAllowlist creates the trusted domain allowlist
func (f *CapabilityFactory) CreateAllowlist() core.DomainAllowlist {
	return allowlist.NewChecker(f.cfg.GetReputation().TrustedDomains, f.logger.Named("allowlist"))
}
