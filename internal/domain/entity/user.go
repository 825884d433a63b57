package entity

// UserContext is the read-only snapshot of a notification recipient's profile.
// It is fetched once per notification and never mutated by the pipeline.
type UserContext struct {
	ID        string
	Name      string
	Email     string
	ManagerID *string
}

// Settings holds a user's delivery preferences and chat identity.
// SlackUserID doubles as the destination for direct bot messages; a nil
// value means the user never connected Slack and slack-channel records for
// them must fail before any delivery attempt.
type Settings struct {
	UserID         string
	SlackUserID    *string
	SlackChannelID *string
	NotifyByEmail  bool
	NotifyBySlack  bool
	ReminderOptIn  bool
}
