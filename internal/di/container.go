package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/scam-detector/internal/config"
	"github.com/mikey/scam-detector/internal/core"
	"github.com/mikey/scam-detector/internal/factory"
	"github.com/mikey/scam-detector/internal/logging"
	"github.com/mikey/scam-detector/internal/ports"
	"github.com/mikey/scam-detector/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register record store
	if err := container.Provide(factory.NewRecordsFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.RecordsFactory) (core.RecordStore, error) {
		return f.CreateRecordStore()
	}); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	// Register frontends
	if err := container.Provide(func(f *factory.FrontendFactory) []ports.Frontend {
		return f.CreateFrontends()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCommon registers the factories and capabilities shared by every
// command: completion client, cache, text processor, search, reputation
// and the domain lists
func provideCommon(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewServiceFactory); err != nil {
		return err
	}

	// Register completion client
	if err := container.Provide(func(f *factory.LLMFactory) (core.TextCompletionClient, error) {
		return f.CreateCompletionClient()
	}); err != nil {
		return err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register capability adapters, all sharing the cache
	if err := container.Provide(factory.NewCapabilityFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CapabilityFactory) core.WebSearchClient {
		return f.CreateSearchClient()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CapabilityFactory) core.ReputationClient {
		return f.CreateReputationClient()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CapabilityFactory) (core.Blacklist, error) {
		return f.CreateBlacklist()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CapabilityFactory) core.DomainAllowlist {
		return f.CreateAllowlist()
	}); err != nil {
		return err
	}

	return nil
}

// provideService registers the scam detection service and the frontend
// factory that serves it
func provideService(container *dig.Container) error {
	if err := container.Provide(func(
		f *factory.ServiceFactory,
		completion core.TextCompletionClient,
		search core.WebSearchClient,
		reputation core.ReputationClient,
		blacklist core.Blacklist,
		allowlist core.DomainAllowlist,
		cache core.CacheRepository,
		records core.RecordStore,
		text *utils.TextProcessor,
	) (*core.ScamDetectionService, error) {
		return f.CreateService(factory.ServiceDeps{
			Completion: completion,
			Search:     search,
			Reputation: reputation,
			Blacklist:  blacklist,
			Allowlist:  allowlist,
			Cache:      cache,
			Records:    records,
			Text:       text,
		})
	}); err != nil {
		return err
	}

	return container.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		service *core.ScamDetectionService,
	) *factory.FrontendFactory {
		return factory.NewFrontendFactory(cfg, logger, service)
	})
}
