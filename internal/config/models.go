package config

import (
	"time"

	"github.com/mikey/scam-detector/internal/core"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// SearchConfig represents the configuration for the web search backend
type SearchConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	Country  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// ReputationConfig represents the configuration for the URL reputation service
type ReputationConfig struct {
	APIKey         string
	BaseURL        string
	PollDelay      time.Duration
	Timeout        time.Duration
	CacheTTL       time.Duration
	TrustedDomains []string
}

// CacheConfig represents the configuration of the shared cache
type CacheConfig struct {
	Type             string
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	Redis            RedisConfig
}

// RedisConfig represents the configuration for the Redis cache backend
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// RecordsConfig represents where analysis records are persisted
type RecordsConfig struct {
	Type        string
	Directory   string
	SQLitePath  string
	PostgresDSN string
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxRequestBytes int64
	CORSOrigins     []string
}

// SMTPConfig represents the SMTP intake configuration
type SMTPConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
	MaxRecipients   int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// AnalysisConfig represents the pipeline limits
type AnalysisConfig struct {
	MaxMessageSize         int
	ExtractKeywords        bool
	KeywordTimeout         time.Duration
	SearchTimeout          time.Duration
	Timeout                time.Duration
	RecentScamsTimeout     time.Duration
	LinkConcurrency        int
	ScamReportSearch       bool
	EducationSearchTimeout time.Duration
	EducationTimeout       time.Duration
	PersistTimeout         time.Duration
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetSearch returns the web search configuration
func (c *Config) GetSearch() SearchConfig {
	return SearchConfig{
		APIKey:   c.GetString("search.api_key"),
		BaseURL:  c.GetString("search.base_url"),
		Language: c.GetString("search.language"),
		Country:  c.GetString("search.country"),
		Timeout:  c.durationOr("search.timeout", 10*time.Second),
		CacheTTL: c.durationOr("search.cache_ttl", 0),
	}
}

// GetReputation returns the reputation service configuration
func (c *Config) GetReputation() ReputationConfig {
	return ReputationConfig{
		APIKey:         c.GetString("reputation.api_key"),
		BaseURL:        c.GetString("reputation.base_url"),
		PollDelay:      c.durationOr("reputation.poll_delay", 2*time.Second),
		Timeout:        c.durationOr("reputation.timeout", 15*time.Second),
		CacheTTL:       c.durationOr("reputation.cache_ttl", 24*time.Hour),
		TrustedDomains: c.GetStringSlice("reputation.trusted_domains"),
	}
}

// GetCache returns the shared cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		CleanupFrequency: c.durationOr("cache.cleanup_frequency", time.Hour),
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		Redis: RedisConfig{
			Address:   c.GetString("cache.redis.address"),
			Password:  c.GetString("cache.redis.password"),
			DB:        c.GetInt("cache.redis.db"),
			KeyPrefix: c.GetString("cache.redis.key_prefix"),
		},
	}
}

// GetRecords returns the record store configuration
func (c *Config) GetRecords() RecordsConfig {
	return RecordsConfig{
		Type:        c.GetString("records.type"),
		Directory:   c.GetString("records.directory"),
		SQLitePath:  c.GetString("records.sqlite_path"),
		PostgresDSN: c.GetString("records.postgres_dsn"),
	}
}

// GetServer returns the HTTP API configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		ReadTimeout:     c.durationOr("server.read_timeout", 30*time.Second),
		WriteTimeout:    c.durationOr("server.write_timeout", 120*time.Second),
		MaxRequestBytes: int64(c.GetInt("server.max_request_bytes")),
		CORSOrigins:     c.GetStringSlice("server.cors_origins"),
	}
}

// GetSMTP returns the SMTP intake configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:         c.GetBool("smtp.enabled"),
		ListenAddress:   c.GetString("smtp.listen_address"),
		Domain:          c.GetString("smtp.domain"),
		MaxMessageBytes: int64(c.GetInt("smtp.max_message_bytes")),
		MaxRecipients:   c.GetInt("smtp.max_recipients"),
		ReadTimeout:     c.durationOr("smtp.read_timeout", 30*time.Second),
		WriteTimeout:    c.durationOr("smtp.write_timeout", 30*time.Second),
	}
}

// GetAnalysis returns the pipeline limits
func (c *Config) GetAnalysis() AnalysisConfig {
	return AnalysisConfig{
		MaxMessageSize:         c.GetInt("analysis.max_message_size"),
		ExtractKeywords:        c.GetBool("analysis.extract_keywords"),
		KeywordTimeout:         c.durationOr("analysis.keyword_timeout", 5*time.Second),
		SearchTimeout:          c.durationOr("analysis.search_timeout", 5*time.Second),
		Timeout:                c.durationOr("analysis.timeout", 60*time.Second),
		RecentScamsTimeout:     c.durationOr("analysis.recent_scams_timeout", 5*time.Second),
		LinkConcurrency:        c.GetInt("analysis.link_concurrency"),
		ScamReportSearch:       c.GetBool("analysis.scam_report_search"),
		EducationSearchTimeout: c.durationOr("analysis.education_search_timeout", 5*time.Second),
		EducationTimeout:       c.durationOr("analysis.education_timeout", 10*time.Second),
		PersistTimeout:         c.durationOr("analysis.persist_timeout", 10*time.Second),
	}
}

// GetTuning returns the scoring calibration, with tuning.* keys overriding
// the stock values
func (c *Config) GetTuning() (core.Tuning, error) {
	tuning := core.DefaultTuning()
	if err := c.v.UnmarshalKey("tuning", &tuning); err != nil {
		return tuning, err
	}
	return tuning, nil
}
