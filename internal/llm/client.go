// Package llm provides the language-model boundary for the fraud assistant.
// It supports multiple providers behind a single Chat interface, with rate
// limiting and response caching.
package llm

import (
	"context"
	"time"

	"github.com/fraudradar/fraud-radar/internal/model"
)

// Client defines the interface for LLM providers.
type Client interface {
	Chat(ctx context.Context, history []model.ChatMessage, message string) (string, error)
}

// Config holds provider configuration. The API key is server-held and never
// exposed to callers of the HTTP surface.
type Config struct {
	Provider          string
	APIKey            string
	Model             string
	Temperature       float64
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerMinute int
	CacheTTL          time.Duration
	MaxRetries        int
}

// defaultTimeout keeps the assistant responsive for interactive chat; a hung
// upstream surfaces as a generic failure instead of blocking the caller.
const defaultTimeout = 5 * time.Second
