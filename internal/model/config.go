package model

import "time"

// Config is the complete runtime configuration, assembled from defaults,
// the config file, environment variables and CLI flags.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Grounding   GroundingConfig   `yaml:"grounding"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// LLMConfig configures the model gateway.
type LLMConfig struct {
	Provider        string  `yaml:"provider"`         // "novita" (OpenAI-compatible HTTP), "openai"
	BaseURL         string  `yaml:"base_url"`
	APIKey          string  `yaml:"-"`                // from env only, never written to disk
	Model           string  `yaml:"model"`            // primary model
	FallbackModel   string  `yaml:"fallback_model"`   // tried after the primary is exhausted
	Temperature     float32 `yaml:"temperature"`      // default per-call temperature
	MaxTokens       int     `yaml:"max_tokens"`
	Timeout         int     `yaml:"timeout"`          // seconds, per attempt against the primary
	FallbackTimeout int     `yaml:"fallback_timeout"` // seconds, per attempt against the fallback
	MaxAttempts     int     `yaml:"max_attempts"`     // per model
	RatePerSecond   float64 `yaml:"rate_per_second"`  // request pacing, 0 disables
	Burst           int     `yaml:"burst"`
}

// GroundingConfig configures document grounding.
type GroundingConfig struct {
	MaxSectionChars int `yaml:"max_section_chars"` // bounds downstream prompt size
}

// PipelineConfig configures the stage modules.
type PipelineConfig struct {
	SegmentBatchSize      int      `yaml:"segment_batch_size"`
	ExcludedRoles         []string `yaml:"excluded_roles"` // roles skipped by claim extraction
	ContextChars          int      `yaml:"context_chars"`  // shared context cap for assumption mining
	PreviewChars          int      `yaml:"preview_chars"`  // per-section preview length in prompts
	AssumptionTemperature float32  `yaml:"assumption_temperature"`
}

// CacheConfig configures the gateway response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig configures batch processing.
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:        "novita",
			BaseURL:         "https://api.novita.ai/v3/openai",
			Model:           "baidu/ernie-4.5-vl-28b-a3b",
			FallbackModel:   "baidu/ernie-4.0-turbo-8k",
			Temperature:     0.3,
			MaxTokens:       4000,
			Timeout:         120,
			FallbackTimeout: 90,
			MaxAttempts:     5,
			RatePerSecond:   2,
			Burst:           4,
		},
		Grounding: GroundingConfig{
			MaxSectionChars: 6000,
		},
		Pipeline: PipelineConfig{
			SegmentBatchSize:      5,
			ExcludedRoles:         []string{"limitations"},
			ContextChars:          6000,
			PreviewChars:          800,
			AssumptionTemperature: 0.7,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     "",
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 2,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
