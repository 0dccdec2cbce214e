package factory

import (
	"fmt"

	"github.com/mikey/scam-detector/internal/adapters/bedrock"
	"github.com/mikey/scam-detector/internal/adapters/gemini"
	"github.com/mikey/scam-detector/internal/adapters/openai"
	"github.com/mikey/scam-detector/internal/config"
	"github.com/mikey/scam-detector/internal/core"
	"go.uber.org/zap"
)

// LLMFactory creates text completion clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCompletionClient creates a completion client for the configured provider
func (f *LLMFactory) CreateCompletionClient() (core.TextCompletionClient, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg.GetBedrock(), f.logger).CreateClient()
	case "gemini":
		return gemini.NewFactory(f.cfg.GetGemini(), f.logger).CreateClient()
	case "openai":
		return openai.NewFactory(f.cfg.GetOpenAI(), f.logger).CreateClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
