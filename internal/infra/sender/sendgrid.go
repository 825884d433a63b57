package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kudos-dispatch/internal/resilience/circuitbreaker"
	"kudos-dispatch/internal/usecase/render"
)

// defaultSendGridAPIURL is the SendGrid v3 mail send endpoint.
const defaultSendGridAPIURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridConfig contains configuration for the email sender.
type SendGridConfig struct {
	// Enabled indicates whether email delivery is enabled
	Enabled bool

	// APIKey is the SendGrid API key used as the Bearer credential
	APIKey string

	// APIURL overrides the mail send endpoint, used in tests
	APIURL string

	// FromEmail is the fixed sender address; it must be a verified
	// sender identity in the SendGrid account
	FromEmail string

	// FromName is the display name on outgoing mail
	FromName string

	// Timeout is the HTTP request timeout for SendGrid API calls
	Timeout time.Duration
}

// SendGridSender delivers rendered emails through the SendGrid v3 API.
// One Send call is exactly one mail/send request; no internal retries.
type SendGridSender struct {
	config     SendGridConfig
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

// NewSendGridSender creates a SendGridSender with the specified configuration.
func NewSendGridSender(config SendGridConfig) *SendGridSender {
	if config.APIURL == "" {
		config.APIURL = defaultSendGridAPIURL
	}
	return &SendGridSender{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		breaker: circuitbreaker.New(circuitbreaker.SendGridAPIConfig()),
	}
}

// sendGridRequest is the mail/send request body.
type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridPersonalization struct {
	To      []sendGridAddress `json:"to"`
	Subject string            `json:"subject"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// sendGridErrorResponse is SendGrid's structured error payload.
type sendGridErrorResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Send delivers one rendered email to the given address.
//
// A non-success response aggregates all provider-reported sub-errors into
// a single message; if the body carries no structured errors the HTTP
// status text is used instead.
func (s *SendGridSender) Send(ctx context.Context, to string, content *render.EmailContent) error {
	if !s.config.Enabled {
		return ErrSenderDisabled
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.sendMail(ctx, to, content)
	})
	return err
}

func (s *SendGridSender) sendMail(ctx context.Context, to string, content *render.EmailContent) error {
	payload := sendGridRequest{
		Personalizations: []sendGridPersonalization{
			{
				To:      []sendGridAddress{{Email: to}},
				Subject: content.Subject,
			},
		},
		From: sendGridAddress{
			Email: s.config.FromEmail,
			Name:  s.config.FromName,
		},
		Content: []sendGridContent{
			{Type: "text/html", Value: content.HTML},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		slog.Debug("email delivered",
			slog.String("to", to),
			slog.String("subject", content.Subject))
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return statusError(resp, fmt.Sprintf("SendGrid API error: %s", aggregateSendGridErrors(body, resp.Status)))
}

// aggregateSendGridErrors joins every provider-reported sub-error into one
// message, falling back to the status text when the body has none.
func aggregateSendGridErrors(body []byte, statusText string) string {
	var errResp sendGridErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Errors) > 0 {
		messages := make([]string, 0, len(errResp.Errors))
		for _, e := range errResp.Errors {
			messages = append(messages, e.Message)
		}
		return strings.Join(messages, ", ")
	}
	return statusText
}

// Health reports the sender's availability for health endpoints.
func (s *SendGridSender) Health() ChannelHealth {
	return ChannelHealth{
		Name:               "email",
		Enabled:            s.config.Enabled,
		CircuitBreakerOpen: s.breaker.IsOpen(),
	}
}
