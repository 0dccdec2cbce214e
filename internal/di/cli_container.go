package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/scam-detector/internal/config"
	"github.com/mikey/scam-detector/internal/core"
	"github.com/mikey/scam-detector/internal/factory"
	"github.com/mikey/scam-detector/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64

	// Input flags
	InputFile string
	Email     bool
	Submitter string

	// Output flags
	NoSave     bool
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// LLM provider flags
	flag.StringVar(&flags.Provider, "provider", "", "LLM provider (gemini, openai, bedrock); overrides the config file")
	flag.StringVar(&flags.Model, "model", "", "Model name for the selected provider")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 0, "Maximum tokens for LLM response")
	flag.Float64Var(&flags.Temperature, "temperature", -1, "Temperature for LLM generation")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input message file (use stdin if not specified)")
	flag.BoolVar(&flags.Email, "eml", false, "Treat the input as a raw RFC 5322 email")
	flag.StringVar(&flags.Submitter, "user", "cli", "Submitter identifier recorded with the analysis")

	// Output flags
	flag.BoolVar(&flags.NoSave, "no-save", false, "Do not persist the analysis record")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register record store
	if err := container.Provide(factory.NewRecordsFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(flags *CLIFlags, f *factory.RecordsFactory) (core.RecordStore, error) {
		if flags.NoSave {
			return nil, nil
		}
		return f.CreateRecordStore()
	}); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overrides configuration values with the flags that were set
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()

	if flags.Provider != "" {
		v.Set("llm.provider", flags.Provider)
	}
	provider := v.GetString("llm.provider")

	if flags.Model != "" {
		switch provider {
		case "bedrock":
			v.Set("bedrock.model_id", flags.Model)
		default:
			v.Set(provider+".model_name", flags.Model)
		}
	}
	if flags.MaxTokens > 0 {
		v.Set(provider+".max_tokens", flags.MaxTokens)
	}
	if flags.Temperature >= 0 {
		v.Set(provider+".temperature", flags.Temperature)
	}
}
