package sender

import (
	"context"

	"kudos-dispatch/internal/usecase/render"
)

// NoOpSlackSender satisfies the dispatch loop's Slack sender contract when
// Slack delivery is disabled, following the Null Object pattern so callers
// need no nil checks.
type NoOpSlackSender struct{}

func NewNoOpSlackSender() *NoOpSlackSender {
	return &NoOpSlackSender{}
}

// Send does nothing and returns nil immediately.
func (n *NoOpSlackSender) Send(ctx context.Context, msg *render.SlackMessage) error {
	return nil
}

// NoOpEmailSender is the disabled counterpart for email delivery.
type NoOpEmailSender struct{}

func NewNoOpEmailSender() *NoOpEmailSender {
	return &NoOpEmailSender{}
}

// Send does nothing and returns nil immediately.
func (n *NoOpEmailSender) Send(ctx context.Context, to string, content *render.EmailContent) error {
	return nil
}

// Health reports the disabled channel for health endpoints.
func (n *NoOpSlackSender) Health() ChannelHealth {
	return ChannelHealth{Name: "slack"}
}

// Health reports the disabled channel for health endpoints.
func (n *NoOpEmailSender) Health() ChannelHealth {
	return ChannelHealth{Name: "email"}
}
