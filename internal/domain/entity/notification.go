// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as NotificationRecord, UserContext and
// KudosContext, along with their validation rules and domain-specific errors.
package entity

import (
	"time"

	"kudos-dispatch/internal/utils/text"
)

// MaxMessageRunes caps the free-text payload on a queue record. The limit is
// in runes, not bytes, so multi-byte alphabets get the same allowance.
const MaxMessageRunes = 10000

// NotificationType identifies what kind of event a queued notification describes.
type NotificationType string

// Supported notification types.
const (
	TypeKudosReceived       NotificationType = "kudos_received"
	TypeManagerNotification NotificationType = "manager_notification"
	TypeOtherNotification   NotificationType = "other_notification"
	TypeWeeklyReminder      NotificationType = "weekly_reminder"
	TypeAccessRequest       NotificationType = "access_request"
)

// NotificationChannel identifies the delivery medium for a notification.
type NotificationChannel string

// Supported delivery channels.
const (
	ChannelEmail NotificationChannel = "email"
	ChannelSlack NotificationChannel = "slack"
)

// NotificationStatus is the state machine value of a queued notification.
//
// A record transitions pending -> processing -> {sent | failed}. Only the
// dispatcher invocation that claimed a record (moved it to processing) may
// move it to a terminal state, and every terminal update is conditioned on
// the record still being in processing.
type NotificationStatus string

// Notification queue states.
const (
	StatusPending    NotificationStatus = "pending"
	StatusProcessing NotificationStatus = "processing"
	StatusSent       NotificationStatus = "sent"
	StatusFailed     NotificationStatus = "failed"
)

// NotificationRecord represents one unit of work in the notification queue.
// It is created by producers outside this service (kudos creation, the
// weekly-reminder scheduler, access-request handling) in pending state and
// retired by the dispatch loop.
type NotificationRecord struct {
	ID        string
	Type      NotificationType
	Channel   NotificationChannel
	UserID    string
	KudosID   *string // set for kudos-related types, nil for weekly_reminder / access_request
	Message   *string // free-text payload, used by access_request
	Status    NotificationStatus
	Error     *string // last failure description, cleared on success
	SentAt    *time.Time
	CreatedAt time.Time
}

// IsValidType reports whether t is one of the supported notification types.
func IsValidType(t NotificationType) bool {
	switch t {
	case TypeKudosReceived, TypeManagerNotification, TypeOtherNotification,
		TypeWeeklyReminder, TypeAccessRequest:
		return true
	}
	return false
}

// IsValidChannel reports whether c is one of the supported delivery channels.
func IsValidChannel(c NotificationChannel) bool {
	return c == ChannelEmail || c == ChannelSlack
}

// Validate checks that the record carries everything the dispatcher needs.
// It does not verify referenced rows exist; that happens during context
// loading and fails the individual record, not the batch.
func (n *NotificationRecord) Validate() error {
	if n.ID == "" {
		return &ValidationError{Field: "id", Message: "notification id is required"}
	}
	if n.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "recipient user id is required"}
	}
	if !IsValidType(n.Type) {
		return &ValidationError{Field: "type", Message: "unsupported notification type: " + string(n.Type)}
	}
	if !IsValidChannel(n.Channel) {
		return &ValidationError{Field: "channel", Message: "unsupported channel: " + string(n.Channel)}
	}
	if n.Message != nil && text.CountRunes(*n.Message) > MaxMessageRunes {
		return &ValidationError{Field: "message", Message: "message is too long"}
	}
	return nil
}
