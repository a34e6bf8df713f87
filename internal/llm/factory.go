package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a provider based on configuration.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "novita", "compat", "":
		return NewCompatProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: novita, openai)", config.Provider)
	}
}
