package render

import "errors"

// Sentinel errors for rendering operations.
var (
	// ErrUnsupportedType indicates a notification type the engine has no
	// renderer for. The dispatch loop fails such records instead of
	// silently skipping them.
	ErrUnsupportedType = errors.New("unsupported notification type")

	// ErrMissingKudosContext indicates a kudos-linked notification arrived
	// without its joined kudos data, so the message body cannot be built.
	ErrMissingKudosContext = errors.New("kudos context required for this notification type")

	// ErrMissingStats indicates a weekly_reminder notification arrived
	// without its weekly stats snapshot.
	ErrMissingStats = errors.New("weekly stats required for weekly reminder")
)
