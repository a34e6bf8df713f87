package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ResponseCache stores raw model responses keyed by request fingerprint.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// Client is the gateway the stages call. It attempts the primary model with
// exponential backoff on transient failures, then transparently retries the
// same request against the fallback model, and fails with ErrUnavailable
// only when both are exhausted. Safe for concurrent use.
type Client struct {
	provider Provider
	config   Config
	limiter  *rate.Limiter
	cache    ResponseCache
	cacheTTL time.Duration
	log      *zap.SugaredLogger
}

// sleepFunc is swapped out in tests to avoid real backoff delays.
var sleepFunc = time.Sleep

// NewClient creates a gateway client around a provider.
func NewClient(provider Provider, config Config, log *zap.SugaredLogger) *Client {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if config.FallbackTimeout <= 0 {
		config.FallbackTimeout = 90 * time.Second
	}
	var limiter *rate.Limiter
	if config.RatePerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RatePerSecond), burst)
	}
	return &Client{
		provider: provider,
		config:   config,
		limiter:  limiter,
		log:      log,
	}
}

// WithCache attaches a response cache for identical re-runs.
func (c *Client) WithCache(cache ResponseCache, ttl time.Duration) *Client {
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

// CallOption adjusts a single gateway call.
type CallOption func(*Request)

// WithSystem sets the system instruction for a call.
func WithSystem(system string) CallOption {
	return func(r *Request) { r.System = system }
}

// WithTemperature overrides the default temperature for a call.
func WithTemperature(t float32) CallOption {
	return func(r *Request) { r.Temperature = t }
}

// WithMaxTokens overrides the default token cap for a call.
func WithMaxTokens(n int) CallOption {
	return func(r *Request) { r.MaxTokens = n }
}

// Call sends a prompt and returns the raw model text. Retry and fallback
// happen inside; the caller's context bounds the whole budget, so stages
// should not stack their own retry loops on top.
func (c *Client) Call(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	req := Request{
		Prompt:      prompt,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}
	for _, opt := range opts {
		opt(&req)
	}

	var key string
	if c.cache != nil {
		key = cacheKey(c.config.Model, req)
		if cached, found := c.cache.Get(key); found {
			return string(cached), nil
		}
	}

	var lastErr error
	models := []struct {
		name    string
		timeout time.Duration
	}{
		{c.config.Model, c.config.Timeout},
		{c.config.FallbackModel, c.config.FallbackTimeout},
	}

	for i, m := range models {
		if m.name == "" {
			continue
		}
		text, err := c.callModel(ctx, req, m.name, m.timeout)
		if err == nil {
			if c.cache != nil {
				if cerr := c.cache.Set(key, []byte(text), c.cacheTTL); cerr != nil {
					c.log.Warnw("response cache write failed", "error", cerr)
				}
			}
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if i == 0 && c.config.FallbackModel != "" {
			c.log.Warnw("primary model exhausted, trying fallback",
				"primary", c.config.Model,
				"fallback", c.config.FallbackModel,
				"error", err)
		}
	}

	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// callModel runs the bounded retry loop for one model.
func (c *Client) callModel(ctx context.Context, req Request, modelName string, timeout time.Duration) (string, error) {
	req.Model = modelName

	var lastErr error
	for attempt := 0; attempt < c.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		text, err := c.provider.Complete(attemptCtx, req)
		cancel()

		if err == nil {
			c.log.Debugw("model call succeeded",
				"model", modelName, "attempt", attempt+1, "chars", len(text))
			return text, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			c.log.Warnw("model call failed, not retryable",
				"model", modelName, "error", err)
			return "", err
		}
		c.log.Warnw("model call failed",
			"model", modelName, "attempt", attempt+1, "error", err)

		if attempt < c.config.MaxAttempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			sleepFunc(backoff)
		}
	}
	return "", lastErr
}

// cacheKey fingerprints a request so identical calls hit the cache.
func cacheKey(model string, req Request) string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		model,
		req.System,
		req.Prompt,
		fmt.Sprintf("%.2f", req.Temperature),
	}, "\x1f")))
	return "scarf:v1:" + hex.EncodeToString(h[:])
}
