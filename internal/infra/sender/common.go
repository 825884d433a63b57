// Package sender provides the outbound delivery adapters of the
// notification pipeline. Each sender wraps exactly one HTTP call to a
// third-party provider (Slack Web API, SendGrid) and translates provider
// failures into typed errors the dispatch loop can record verbatim.
//
// Senders never retry internally; retry policy belongs to the outer
// invocation cadence of the dispatcher.
package sender

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RateLimitError represents a 429 rate limit error from a provider.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a provider.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a provider.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// ErrSenderDisabled is returned when Send is called on a disabled sender.
// The dispatch loop treats it like any other delivery failure.
var ErrSenderDisabled = errors.New("sender is disabled")

// IsRateLimit reports whether err is a provider rate limit error.
func IsRateLimit(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// extractRetryAfter reads the Retry-After header of a 429 response.
// Falls back to one second when the header is absent or malformed.
func extractRetryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Second
}

// statusError maps a non-success provider response to the error taxonomy.
func statusError(resp *http.Response, message string) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			RetryAfter: extractRetryAfter(resp),
			Message:    message,
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{StatusCode: resp.StatusCode, Message: message}
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode, Message: message}
	default:
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, message)
	}
}

// ChannelHealth is a point-in-time snapshot of a sender's availability,
// reported by the worker's health endpoints.
type ChannelHealth struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
}
