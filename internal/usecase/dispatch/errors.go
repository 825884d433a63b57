package dispatch

import "errors"

// Sentinel errors for dispatch operations.
var (
	// ErrUnsupportedChannel indicates a claimed record carries a channel
	// the pipeline has no sender for. Validation catches unknown channels
	// before the send switch; this guards the switch itself.
	ErrUnsupportedChannel = errors.New("unsupported notification channel")

	// ErrNoSlackIdentity indicates a slack-channel record whose recipient
	// has no Slack user id on file. Delivery is not attempted.
	ErrNoSlackIdentity = errors.New("no Slack user ID found for user")
)
