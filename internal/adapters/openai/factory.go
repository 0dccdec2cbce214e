package openai

import (
	"fmt"

	"github.com/mikey/scam-detector/internal/config"
	"go.uber.org/zap"
)

// Factory creates new instances of OpenAIClient
type Factory struct {
	cfg    config.OpenAIConfig
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAIClient instances
func NewFactory(cfg config.OpenAIConfig, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClient creates a new OpenAIClient
func (f *Factory) CreateClient() (*OpenAIClient, error) {
	if f.cfg.APIKey == "" && f.cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai api key is not configured")
	}

	f.logger.Info("Using OpenAI", zap.String("model", f.cfg.ModelName))

	return NewOpenAIClient(
		f.cfg.APIKey,
		f.cfg.BaseURL,
		f.cfg.ModelName,
		f.cfg.MaxTokens,
		f.cfg.Temperature,
		f.cfg.TopP,
		f.logger.Named("openai"),
	), nil
}
