package factory

import (
	"fmt"

	"github.com/mikey/scam-detector/internal/config"
	"github.com/mikey/scam-detector/internal/core"
	"github.com/mikey/scam-detector/internal/utils"
	"go.uber.org/zap"
)

// ServiceFactory assembles the analyzers and the scam detection service
type ServiceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// ServiceDeps are the capabilities the service is built from. Search,
// Reputation, Blacklist, Allowlist, Cache and Records may be nil.
type ServiceDeps struct {
	Completion core.TextCompletionClient
	Search     core.WebSearchClient
	Reputation core.ReputationClient
	Blacklist  core.Blacklist
	Allowlist  core.DomainAllowlist
	Cache      core.CacheRepository
	Records    core.RecordStore
	Text       *utils.TextProcessor
}

// NewServiceFactory creates a new service factory
func NewServiceFactory(cfg *config.Config, logger *zap.Logger) *ServiceFactory {
	return &ServiceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateService builds the analyzers from configuration and wires them into
// a scam detection service
func (f *ServiceFactory) CreateService(deps ServiceDeps) (*core.ScamDetectionService, error) {
	tuning, err := f.cfg.GetTuning()
	if err != nil {
		return nil, fmt.Errorf("invalid tuning configuration: %w", err)
	}
	analysisCfg := f.cfg.GetAnalysis()

	messages := core.NewMessageAnalyzer(
		deps.Completion,
		deps.Search,
		deps.Text,
		tuning,
		core.MessageAnalyzerConfig{
			MaxMessageSize:  analysisCfg.MaxMessageSize,
			ExtractKeywords: analysisCfg.ExtractKeywords,
			KeywordTimeout:  analysisCfg.KeywordTimeout,
			SearchTimeout:   analysisCfg.SearchTimeout,
			AnalysisTimeout: analysisCfg.Timeout,
		},
		f.logger,
	)

	links := core.NewLinkAnalyzer(
		deps.Blacklist,
		deps.Reputation,
		deps.Search,
		deps.Allowlist,
		tuning,
		core.LinkAnalyzerConfig{
			ScamReportSearch:  analysisCfg.ScamReportSearch,
			SearchTimeout:     analysisCfg.SearchTimeout,
			ReputationTimeout: f.cfg.GetReputation().Timeout,
		},
		f.logger,
	)

	educationCfg := core.DefaultEducationConfig()
	educationCfg.SearchTimeout = analysisCfg.EducationSearchTimeout
	educationCfg.BaseTimeout = analysisCfg.EducationTimeout
	educationCfg.EnrichTimeout = analysisCfg.EducationTimeout
	education := core.NewEducationSynthesizer(
		deps.Completion,
		deps.Search,
		deps.Cache,
		educationCfg,
		f.logger,
	)

	return core.NewScamDetectionService(
		messages,
		links,
		education,
		deps.Search,
		deps.Records,
		deps.Text,
		tuning,
		core.ServiceConfig{
			RecentScamsTimeout: analysisCfg.RecentScamsTimeout,
			LinkConcurrency:    analysisCfg.LinkConcurrency,
			PersistTimeout:     analysisCfg.PersistTimeout,
		},
		f.logger.Named("service"),
	), nil
}
