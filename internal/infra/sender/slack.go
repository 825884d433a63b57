package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"kudos-dispatch/internal/resilience/circuitbreaker"
	"kudos-dispatch/internal/usecase/render"
)

// defaultSlackAPIURL is the chat.postMessage endpoint of the Slack Web API.
const defaultSlackAPIURL = "https://slack.com/api/chat.postMessage"

// SlackConfig contains configuration for the Slack bot sender.
type SlackConfig struct {
	// Enabled indicates whether Slack delivery is enabled
	Enabled bool

	// BotToken is the bot user OAuth token used as the Bearer credential
	BotToken string

	// APIURL overrides the chat.postMessage endpoint, used in tests
	APIURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration
}

// SlackSender posts rendered Block Kit messages via the Slack Web API.
//
// One Send call is exactly one chat.postMessage request. The sender is
// rate limited to 1 request/second with burst of 1 (Slack's per-channel
// posting limit) and wrapped in a circuit breaker; it never retries.
type SlackSender struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
}

// NewSlackSender creates a SlackSender with the specified configuration.
func NewSlackSender(config SlackConfig) *SlackSender {
	if config.APIURL == "" {
		config.APIURL = defaultSlackAPIURL
	}
	return &SlackSender{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 1), // 1 req/s, burst of 1
		breaker:     circuitbreaker.New(circuitbreaker.SlackAPIConfig()),
	}
}

// slackAPIResponse is the JSON body of a chat.postMessage response.
// Slack reports logical failures with HTTP 200 and ok=false.
type slackAPIResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Send delivers one rendered Slack message.
//
// Failure cases, all surfaced as errors for the dispatch loop to record:
//   - 429: RateLimitError with the provider's Retry-After
//   - other non-2xx: ClientError / ServerError with the raw body
//   - 2xx with ok=false: error carrying Slack's error code
//   - open circuit breaker: gobreaker.ErrOpenState
func (s *SlackSender) Send(ctx context.Context, msg *render.SlackMessage) error {
	if !s.config.Enabled {
		return ErrSenderDisabled
	}

	if err := s.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.postMessage(ctx, msg)
	})
	return err
}

func (s *SlackSender) postMessage(ctx context.Context, msg *render.SlackMessage) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.BotToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp, fmt.Sprintf("Slack API error: %s", string(body)))
	}

	var apiResp slackAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("decode slack response: %w", err)
	}
	if !apiResp.OK {
		errCode := apiResp.Error
		if errCode == "" {
			errCode = resp.Status
		}
		return fmt.Errorf("Slack API error: %s", errCode)
	}

	slog.Debug("slack message delivered",
		slog.String("channel", msg.Channel),
		slog.Int("blocks", len(msg.Blocks)))
	return nil
}

// Health reports the sender's availability for health endpoints.
func (s *SlackSender) Health() ChannelHealth {
	return ChannelHealth{
		Name:               "slack",
		Enabled:            s.config.Enabled,
		CircuitBreakerOpen: s.breaker.IsOpen(),
	}
}
