package llm

import (
	"time"

	"github.com/scarflab/scarf/internal/model"
)

// Config holds gateway configuration.
type Config struct {
	// Provider name: "novita" (OpenAI-compatible HTTP), "openai"
	Provider string

	// BaseURL for the chat completion endpoint
	BaseURL string

	// APIKey bearer token
	APIKey string

	// Model is the primary model
	Model string

	// FallbackModel is tried after the primary is exhausted
	FallbackModel string

	// Temperature used when a call does not override it
	Temperature float32

	// MaxTokens for response generation
	MaxTokens int

	// Timeout per attempt against the primary model
	Timeout time.Duration

	// FallbackTimeout per attempt against the fallback model
	FallbackTimeout time.Duration

	// MaxAttempts per model
	MaxAttempts int

	// RatePerSecond paces outgoing requests; 0 disables pacing
	RatePerSecond float64

	// Burst for the rate limiter
	Burst int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return ConfigFromModel(model.DefaultConfig().LLM)
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:        mc.Provider,
		BaseURL:         mc.BaseURL,
		APIKey:          mc.APIKey,
		Model:           mc.Model,
		FallbackModel:   mc.FallbackModel,
		Temperature:     mc.Temperature,
		MaxTokens:       mc.MaxTokens,
		Timeout:         time.Duration(mc.Timeout) * time.Second,
		FallbackTimeout: time.Duration(mc.FallbackTimeout) * time.Second,
		MaxAttempts:     mc.MaxAttempts,
		RatePerSecond:   mc.RatePerSecond,
		Burst:           mc.Burst,
	}
}
