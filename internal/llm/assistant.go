package llm

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/fraudradar/fraud-radar/internal/common"
	"github.com/fraudradar/fraud-radar/internal/model"
	"github.com/fraudradar/fraud-radar/internal/service"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// assistant wraps a provider client with rate limiting, retries, and response
// caching. Identical questions against the same history are answered from
// cache rather than spending another upstream call.
type assistant struct {
	client    Client
	limiter   *rate.Limiter
	cache     *gocache.Cache
	retryOpts service.RetryOptions
}

func newAssistant(client Client, cfg Config) *assistant {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 2
	}

	return &assistant{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
		cache:   gocache.New(ttl, 2*ttl),
		retryOpts: service.RetryOptions{
			MaxAttempts:  retries,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Chat answers from cache when possible, otherwise waits for rate-limit
// headroom and asks the provider.
func (a *assistant) Chat(ctx context.Context, history []model.ChatMessage, message string) (string, error) {
	key := cacheKey(history, message)
	if cached, found := a.cache.Get(key); found {
		if text, ok := cached.(string); ok {
			return text, nil
		}
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	var text string
	err := common.WithRetry(ctx, func() error {
		reply, chatErr := a.client.Chat(ctx, history, message)
		if chatErr != nil {
			return &common.RetryableError{Err: chatErr, Retryable: common.IsRetryable(chatErr)}
		}
		text = reply
		return nil
	}, a.retryOpts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrAssistantUnavailable, err)
	}

	a.cache.SetDefault(key, text)
	return text, nil
}

func cacheKey(history []model.ChatMessage, message string) string {
	h := sha256.New()
	for _, m := range history {
		fmt.Fprintf(h, "%s\x00%s\x00", m.Role, m.Text)
	}
	h.Write([]byte(message))
	return fmt.Sprintf("%x", h.Sum(nil))
}
