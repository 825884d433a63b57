package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudos-dispatch/internal/domain/entity"
	"kudos-dispatch/internal/usecase/render"
)

func sampleUser() *entity.UserContext {
	return &entity.UserContext{ID: "u-1", Name: "Alice", Email: "alice@example.com"}
}

func TestEmail_KudosReceived(t *testing.T) {
	kudosID := "k-1"
	n := &entity.NotificationRecord{
		ID: "n-1", Type: entity.TypeKudosReceived, Channel: entity.ChannelEmail,
		UserID: "u-1", KudosID: &kudosID,
	}

	content, err := render.Email(n, sampleUser(), sampleKudos(), nil, testConfig)
	require.NoError(t, err)
	assert.Equal(t, "You received kudos from Bob!", content.Subject)
	assert.Contains(t, content.HTML, "Category: Teamwork")
	assert.Contains(t, content.HTML, "Great work on the launch!")
	assert.Contains(t, content.HTML, "https://media.example.com/party.gif")
	assert.Contains(t, content.HTML, "From: Bob")
	assert.Contains(t, content.HTML, "https://kudos.example.com/kudos/k-1")
}

func TestEmail_ManagerNotification_JoinsRecipients(t *testing.T) {
	kudosID := "k-1"
	n := &entity.NotificationRecord{
		ID: "n-1", Type: entity.TypeManagerNotification, Channel: entity.ChannelEmail,
		UserID: "u-9", KudosID: &kudosID,
	}
	kudos := sampleKudos()
	kudos.Recipients = append(kudos.Recipients, entity.Recipient{ID: "u-4", Name: "Dan"})

	content, err := render.Email(n, sampleUser(), kudos, nil, testConfig)
	require.NoError(t, err)
	assert.Equal(t, "Your team member received kudos!", content.Subject)
	assert.Contains(t, content.HTML, "Alice, Cara and Dan received kudos from Bob!")
}

func TestEmail_OtherNotification(t *testing.T) {
	kudosID := "k-1"
	n := &entity.NotificationRecord{
		ID: "n-1", Type: entity.TypeOtherNotification, Channel: entity.ChannelEmail,
		UserID: "u-9", KudosID: &kudosID,
	}

	content, err := render.Email(n, sampleUser(), sampleKudos(), nil, testConfig)
	require.NoError(t, err)
	assert.Equal(t, "Kudos Recognition Notification", content.Subject)
	assert.Contains(t, content.HTML, "Alice and Cara received kudos from Bob!")
}

func TestEmail_WeeklyReminder(t *testing.T) {
	n := &entity.NotificationRecord{
		ID: "n-1", Type: entity.TypeWeeklyReminder, Channel: entity.ChannelEmail, UserID: "u-1",
	}
	stats := &entity.WeeklyStats{
		KudosReceived: 3, KudosGiven: 2, Rank: 2, TotalPoints: 25,
		Leader: "Bob (30 points)", TopCategory: "Teamwork",
	}

	content, err := render.Email(n, sampleUser(), nil, stats, testConfig)
	require.NoError(t, err)
	assert.Equal(t, "🌟 Your Weekly Kudos Update", content.Subject)
	assert.Contains(t, content.HTML, "Hello Alice!")
	assert.Contains(t, content.HTML, "Most Active Category")
	assert.Contains(t, content.HTML, "Teamwork")
	assert.Contains(t, content.HTML, "Bob (30 points)")
	assert.Contains(t, content.HTML, "https://kudos.example.com/give-kudos")
	assert.Contains(t, content.HTML, "https://kudos.example.com/my-kudos")
	assert.Contains(t, content.HTML, "https://kudos.example.com/leaderboard")
	assert.Contains(t, content.HTML, "https://kudos.example.com/settings")
}

func TestEmail_WeeklyReminder_NoTopCategory(t *testing.T) {
	n := &entity.NotificationRecord{
		ID: "n-1", Type: entity.TypeWeeklyReminder, Channel: entity.ChannelEmail, UserID: "u-1",
	}
	stats := &entity.WeeklyStats{
		Leader: entity.NoLeader, TopCategory: entity.NoTopCategory,
	}

	content, err := render.Email(n, sampleUser(), nil, stats, testConfig)
	require.NoError(t, err)
	assert.NotContains(t, content.HTML, "Most Active Category")
	assert.Contains(t, content.HTML, "No leader yet")
}

func TestEmail_AccessRequest(t *testing.T) {
	n := &entity.NotificationRecord{
		ID: "n-1", Type: entity.TypeAccessRequest, Channel: entity.ChannelEmail,
		UserID: "u-1", Message: strPtr("Please review my access request."),
	}

	content, err := render.Email(n, sampleUser(), nil, nil, testConfig)
	require.NoError(t, err)
	assert.Equal(t, "Feedback from Kudos", content.Subject)
	assert.Contains(t, content.HTML, "Please review my access request.")
}

// A kudos-linked record that somehow lost its kudos context falls back to
// the generic notification email instead of failing the render.
func TestEmail_FallbackWithoutKudosContext(t *testing.T) {
	n := &entity.NotificationRecord{
		ID: "n-1", Type: entity.TypeKudosReceived, Channel: entity.ChannelEmail, UserID: "u-1",
	}

	content, err := render.Email(n, sampleUser(), nil, nil, testConfig)
	require.NoError(t, err)
	assert.Equal(t, "Kudos Notification", content.Subject)
	assert.Contains(t, content.HTML, "You have a new notification from Kudos.")
}
