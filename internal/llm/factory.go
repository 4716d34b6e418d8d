package llm

import (
	"fmt"
	"strings"

	"github.com/fraudradar/fraud-radar/internal/common"
)

// NewClient creates a raw LLM client based on the provided configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return newGeminiClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}

// NewAssistant creates a provider client wrapped with rate limiting and
// response caching. This is what callers outside the package should use.
func NewAssistant(cfg Config) (Client, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return newAssistant(client, cfg), nil
}
