// Package llm is the model gateway: providers speak to a single chat
// completion endpoint, and Client layers retry, fallback, pacing and
// caching on top so stages see one reliable Call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Provider is a single model endpoint capable of chat completion.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete sends one chat request and returns the raw text content of
	// the first choice.
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is one chat completion request.
type Request struct {
	Model       string
	Prompt      string
	System      string
	Temperature float32
	MaxTokens   int
}

// ErrUnavailable is returned by Client.Call when both the primary and the
// fallback model are exhausted.
var ErrUnavailable = errors.New("llm: api unavailable")

// ErrEmptyResponse indicates a 2xx response whose content was empty.
var ErrEmptyResponse = errors.New("llm: empty response")

// APIError is a non-2xx response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// retryableStatuses are the transient HTTP codes worth retrying, including
// the provider-specific 520/524.
var retryableStatuses = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
	520: true,
	524: true,
}

// IsRetryable reports whether an error is worth another attempt: transient
// HTTP statuses, timeouts and connection failures. Auth and other client
// errors fail fast.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return retryableStatuses[apiErr.StatusCode]
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return isRetryableNetworkError(err.Error())
}

// isRetryableNetworkError checks error strings for transient network
// failures surfaced by client libraries without typed errors.
func isRetryableNetworkError(msg string) bool {
	s := strings.ToLower(msg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
